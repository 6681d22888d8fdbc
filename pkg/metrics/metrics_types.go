package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Record Metrics
	RecordsLoadedTotal    *prometheus.CounterVec // kind
	RecordsMalformedTotal *prometheus.CounterVec // kind

	// Graph Metrics
	GraphNodes        *prometheus.GaugeVec   // graph
	GraphEdges        *prometheus.GaugeVec   // graph
	PrunedNodesTotal  *prometheus.CounterVec // graph
	PrunedEdgesTotal  *prometheus.CounterVec // graph
	GraphBuildSeconds *prometheus.HistogramVec

	// Analysis Metrics
	MeasureDuration       *prometheus.HistogramVec // graph, measure
	MeasureFailuresTotal  *prometheus.CounterVec   // graph, measure, reason
	CommunitiesDetected   *prometheus.GaugeVec     // graph
	CommunityModularity   *prometheus.GaugeVec     // graph
	AverageClustering     *prometheus.GaugeVec     // graph

	// Collector Metrics
	CollectorRequestsTotal   *prometheus.CounterVec   // endpoint, status
	CollectorRequestDuration *prometheus.HistogramVec // endpoint
	CollectorRetriesTotal    *prometheus.CounterVec   // endpoint
	CollectorBreakerState    prometheus.Gauge

	// Toxicity Metrics
	ToxicityScoredTotal   *prometheus.CounterVec // outcome: toxic, clean, unparseable, failed
	ToxicityScoreDuration prometheus.Histogram

	// System Metrics
	RunDurationSeconds prometheus.Gauge
	GoRoutines         prometheus.Gauge
	MemoryAllocBytes   prometheus.Gauge
	MemorySysBytes     prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initRecordMetrics()
	r.initGraphMetrics()
	r.initAnalysisMetrics()
	r.initCollectorMetrics()
	r.initToxicityMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric in the text exposition format, for
// pickup by a node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updateSystemMetrics()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
