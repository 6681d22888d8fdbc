package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCollectorMetrics() {
	r.CollectorRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_collector_requests_total",
			Help: "Total number of requests sent to the remote instance",
		},
		[]string{"endpoint", "status"},
	)

	r.CollectorRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fedigraph_collector_request_duration_seconds",
			Help:    "Duration of requests to the remote instance in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	r.CollectorRetriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_collector_retries_total",
			Help: "Total number of retried requests",
		},
		[]string{"endpoint"},
	)

	r.CollectorBreakerState = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fedigraph_collector_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
}
