package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRecordMetrics() {
	r.RecordsLoadedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_records_loaded_total",
			Help: "Total number of records loaded",
		},
		[]string{"kind"}, // post, user
	)

	r.RecordsMalformedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_records_malformed_total",
			Help: "Total number of record sets rejected as malformed",
		},
		[]string{"kind"},
	)
}
