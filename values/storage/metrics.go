package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldvalues",
		Subsystem: "cache",
		Name:      "reconcile_total",
		Help:      "Snapshots reconciled against the cache, by outcome.",
	}, []string{"change"})

	queryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fieldvalues",
		Subsystem: "cache",
		Name:      "query_seconds",
		Help:      "Latency of ordered collection scans.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"collection"})

	queryResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fieldvalues",
		Subsystem: "cache",
		Name:      "query_results",
		Help:      "Documents returned per ordered collection scan.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)

// tracerName identifies cache spans
const tracerName = "github.com/wbrown/fieldvalues/values/storage"

func init() {
	prometheus.MustRegister(reconcileTotal, queryLatency, queryResults)
}
