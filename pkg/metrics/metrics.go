package metrics

import (
	"time"
)

// RecordRecordsLoaded counts loaded records of a kind
func (r *Registry) RecordRecordsLoaded(kind string, n int) {
	r.RecordsLoadedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordMalformed counts a record set rejected by validation
func (r *Registry) RecordMalformed(kind string) {
	r.RecordsMalformedTotal.WithLabelValues(kind).Inc()
}

// RecordGraphBuilt records the size of a freshly built graph
func (r *Registry) RecordGraphBuilt(graphName string, nodes, edges int, duration time.Duration) {
	r.GraphNodes.WithLabelValues(graphName).Set(float64(nodes))
	r.GraphEdges.WithLabelValues(graphName).Set(float64(edges))
	r.GraphBuildSeconds.WithLabelValues(graphName).Observe(duration.Seconds())
}

// RecordPrune records what a prune pass removed and the resulting size
func (r *Registry) RecordPrune(graphName string, nodesRemoved, edgesRemoved, nodesLeft, edgesLeft int) {
	r.PrunedNodesTotal.WithLabelValues(graphName).Add(float64(nodesRemoved))
	r.PrunedEdgesTotal.WithLabelValues(graphName).Add(float64(edgesRemoved))
	r.GraphNodes.WithLabelValues(graphName).Set(float64(nodesLeft))
	r.GraphEdges.WithLabelValues(graphName).Set(float64(edgesLeft))
}

// RecordMeasure records one measure computation. An empty reason means success.
func (r *Registry) RecordMeasure(graphName, measure, reason string, duration time.Duration) {
	r.MeasureDuration.WithLabelValues(graphName, measure).Observe(duration.Seconds())
	if reason != "" {
		r.MeasureFailuresTotal.WithLabelValues(graphName, measure, reason).Inc()
	}
}

// RecordPartition records the community count and modularity of a partition
func (r *Registry) RecordPartition(graphName string, communities int, modularity float64) {
	r.CommunitiesDetected.WithLabelValues(graphName).Set(float64(communities))
	r.CommunityModularity.WithLabelValues(graphName).Set(modularity)
}

// RecordClustering records an average clustering coefficient
func (r *Registry) RecordClustering(graphName string, value float64) {
	r.AverageClustering.WithLabelValues(graphName).Set(value)
}

// RecordCollectorRequest records a request to the remote instance
func (r *Registry) RecordCollectorRequest(endpoint, status string, duration time.Duration) {
	r.CollectorRequestsTotal.WithLabelValues(endpoint, status).Inc()
	r.CollectorRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCollectorRetry counts a retried request
func (r *Registry) RecordCollectorRetry(endpoint string) {
	r.CollectorRetriesTotal.WithLabelValues(endpoint).Inc()
}

// SetBreakerState sets the circuit breaker state gauge
func (r *Registry) SetBreakerState(state int) {
	r.CollectorBreakerState.Set(float64(state))
}

// RecordToxicity records a scoring outcome
func (r *Registry) RecordToxicity(outcome string, duration time.Duration) {
	r.ToxicityScoredTotal.WithLabelValues(outcome).Inc()
	r.ToxicityScoreDuration.Observe(duration.Seconds())
}

// RecordRunDuration records the wall-clock duration of a pipeline run
func (r *Registry) RecordRunDuration(duration time.Duration) {
	r.RunDurationSeconds.Set(duration.Seconds())
}
