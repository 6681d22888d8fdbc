package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.MeasureDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fedigraph_measure_duration_seconds",
			Help:    "Duration of a structural measure computation in seconds",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 30, 120},
		},
		[]string{"graph", "measure"},
	)

	r.MeasureFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_measure_failures_total",
			Help: "Total number of measures that could not be computed",
		},
		[]string{"graph", "measure", "reason"}, // empty_graph, not_converged, error
	)

	r.CommunitiesDetected = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fedigraph_communities",
			Help: "Number of communities in the last partition",
		},
		[]string{"graph"},
	)

	r.CommunityModularity = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fedigraph_modularity",
			Help: "Modularity of the last partition",
		},
		[]string{"graph"},
	)

	r.AverageClustering = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fedigraph_average_clustering",
			Help: "Average local clustering coefficient",
		},
		[]string{"graph"},
	)
}
