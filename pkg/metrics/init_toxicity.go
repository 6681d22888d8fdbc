package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initToxicityMetrics() {
	r.ToxicityScoredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_toxicity_scored_total",
			Help: "Total number of nodes sent to the toxicity scorer by outcome",
		},
		[]string{"outcome"}, // toxic, clean, unparseable, failed
	)

	r.ToxicityScoreDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fedigraph_toxicity_score_duration_seconds",
			Help:    "Duration of a single toxicity scoring call in seconds",
			Buckets: []float64{.05, .1, .5, 1, 2, 5, 10, 30},
		},
	)
}
