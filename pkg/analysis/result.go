package analysis

import (
	"time"

	"github.com/dd0wney/fedigraph/pkg/algorithms"
)

// Measure names used as MetricResult keys.
const (
	MeasureClustering    = "clustering"
	MeasurePageRank      = "pagerank"
	MeasureBetweenness   = "betweenness"
	MeasureEigenvector   = "eigenvector"
	MeasureGlobalAverage = "global_average_degree"
	MeasureLocalAverage  = "local_average_degree"
	MeasureDegreeDist    = "degree_distribution"
	MeasureConnectivity  = "degree_connectivity"
	MeasureComponents    = "components"
)

// ScoreMeasures are the measures that produce a per-node score map.
var ScoreMeasures = []string{MeasurePageRank, MeasureBetweenness, MeasureEigenvector, MeasureLocalAverage}

// Value is the outcome of one measure. Scalar measures fill Scalar, per-node
// measures fill Scores; the local average fills both. The components measure
// counts connected components, ignoring edge direction.
type Value struct {
	Defined bool               `json:"defined"`
	Scalar  float64            `json:"scalar,omitempty"`
	Scores  map[string]float64 `json:"scores,omitempty"`
	Error   string             `json:"error,omitempty"`
	Elapsed time.Duration      `json:"elapsed_ns"`

	err error
}

// Err returns the error that left the measure undefined, if any.
func (v Value) Err() error { return v.err }

// MetricResult maps measure names to values for one graph.
type MetricResult struct {
	Graph     string           `json:"graph"`
	NodeCount int              `json:"node_count"`
	EdgeCount int              `json:"edge_count"`
	Measures  map[string]Value `json:"measures"`

	DegreeDistribution []algorithms.DegreeCount `json:"degree_distribution,omitempty"`
	DegreeConnectivity map[int]float64          `json:"degree_connectivity,omitempty"`
	PageRankIterations int                      `json:"pagerank_iterations,omitempty"`
	LargestComponent   int                      `json:"largest_component,omitempty"`
}

// Scalar returns a scalar measure and whether it is defined.
func (r *MetricResult) Scalar(measure string) (float64, bool) {
	v, ok := r.Measures[measure]
	if !ok || !v.Defined {
		return 0, false
	}
	return v.Scalar, true
}

// Scores returns a per-node measure and whether it is defined.
func (r *MetricResult) Scores(measure string) (map[string]float64, bool) {
	v, ok := r.Measures[measure]
	if !ok || !v.Defined || v.Scores == nil {
		return nil, false
	}
	return v.Scores, true
}

// Top returns the n highest-scoring nodes of a per-node measure.
func (r *MetricResult) Top(measure string, n int) []algorithms.RankedNode {
	scores, ok := r.Scores(measure)
	if !ok {
		return nil
	}
	return algorithms.TopNodes(scores, n)
}

// Undefined lists the measures that could not be computed.
func (r *MetricResult) Undefined() []string {
	var names []string
	for _, name := range measureOrder {
		if v, ok := r.Measures[name]; ok && !v.Defined {
			names = append(names, name)
		}
	}
	return names
}

// Partition is the community structure of one graph.
type Partition struct {
	Graph       string                  `json:"graph"`
	Defined     bool                    `json:"defined"`
	Modularity  float64                 `json:"modularity"`
	Levels      int                     `json:"levels"`
	Assignment  map[string]int          `json:"assignment,omitempty"`
	Communities []*algorithms.Community `json:"communities,omitempty"`
	Projected   bool                    `json:"projected,omitempty"` // directed input was made undirected
	Error       string                  `json:"error,omitempty"`
}

// CommunityCount returns the number of communities.
func (p *Partition) CommunityCount() int {
	return len(p.Communities)
}

var measureOrder = []string{
	MeasureClustering,
	MeasurePageRank,
	MeasureBetweenness,
	MeasureEigenvector,
	MeasureGlobalAverage,
	MeasureLocalAverage,
	MeasureDegreeDist,
	MeasureConnectivity,
	MeasureComponents,
}
