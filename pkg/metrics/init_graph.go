package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fedigraph_graph_nodes",
			Help: "Number of nodes in the graph after construction and pruning",
		},
		[]string{"graph"}, // diffusion, friendship
	)

	r.GraphEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fedigraph_graph_edges",
			Help: "Number of edges in the graph after construction and pruning",
		},
		[]string{"graph"},
	)

	r.PrunedNodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_pruned_nodes_total",
			Help: "Total number of nodes removed by pruning",
		},
		[]string{"graph"},
	)

	r.PrunedEdgesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fedigraph_pruned_edges_total",
			Help: "Total number of edges removed by pruning",
		},
		[]string{"graph"},
	)

	r.GraphBuildSeconds = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fedigraph_graph_build_duration_seconds",
			Help:    "Duration of graph construction in seconds",
			Buckets: []float64{.001, .01, .1, .5, 1, 5},
		},
		[]string{"graph"},
	)
}
