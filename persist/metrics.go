package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shardchain",
		Subsystem: "persist",
		Name:      "snapshot_seconds",
		Help:      "Time spent encoding and writing snapshots.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	snapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "persist",
		Name:      "snapshot_failures_total",
		Help:      "Snapshots that could not be written.",
	})

	snapshotBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "shardchain",
		Subsystem: "persist",
		Name:      "snapshot_bytes",
		Help:      "Size of the last written snapshot.",
	})
)
