package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "ledger",
		Name:      "blocks_appended_total",
		Help:      "Blocks linked onto a shard, by origin.",
	}, []string{"origin"})

	blocksDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "ledger",
		Name:      "blocks_dropped_total",
		Help:      "Blocks that failed linkage or integrity checks, by reason.",
	}, []string{"reason"})

	txSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "ledger",
		Name:      "tx_submitted_total",
		Help:      "Transactions submitted, by acceptance.",
	}, []string{"result"})

	txApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "ledger",
		Name:      "tx_applied_total",
		Help:      "Transactions applied from appended blocks, by outcome.",
	}, []string{"outcome"})

	pohSeq = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "shardchain",
		Subsystem: "poh",
		Name:      "seq",
		Help:      "Number of proof-of-history advances.",
	})
)
