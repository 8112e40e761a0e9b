package pow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hashesTried = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "pow",
		Name:      "hashes_total",
		Help:      "Seal hashes computed by nonce searches.",
	})

	searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shardchain",
		Subsystem: "pow",
		Name:      "searches_total",
		Help:      "Finished nonce searches by result.",
	}, []string{"result"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "shardchain",
		Subsystem: "pow",
		Name:      "search_seconds",
		Help:      "Wall time of successful nonce searches.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)
