package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// chatRequests counts relay outcomes.
	// Labels: result (success, upstream_error, bad_request, throttled, error).
	chatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retirewise",
			Subsystem: "relay",
			Name:      "chat_requests_total",
			Help:      "Total number of chat relay requests",
		},
		[]string{"result"},
	)

	// chatDuration tracks end-to-end proxy latency.
	chatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "retirewise",
			Subsystem: "relay",
			Name:      "chat_duration_seconds",
			Help:      "Duration of proxied chat requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
