package gossip

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "gossip",
		Name:      "frames_received_total",
		Help:      "Frames taken from peer inboxes, by message type.",
	}, []string{"type"})

	framesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "gossip",
		Name:      "frames_dropped_total",
		Help:      "Frames discarded before reaching the ledger, by reason.",
	}, []string{"reason"})
)
