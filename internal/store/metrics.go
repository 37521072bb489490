package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal counts store operations.
	// Labels: backend (local, remote, memory), collection, operation, result.
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retirewise",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of document store operations",
		},
		[]string{"backend", "collection", "operation", "result"},
	)

	// operationDuration tracks store operation latency.
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "retirewise",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of document store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)
)

// observeOp records one store operation outcome.
func observeOp(backend, collection, op string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(backend, collection, op, result).Inc()
	operationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
