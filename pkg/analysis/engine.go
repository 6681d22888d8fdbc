// Package analysis runs the structural measures and community detection
// over a built graph and reports results with explicit undefined markers.
package analysis

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/fedigraph/pkg/algorithms"
	"github.com/dd0wney/fedigraph/pkg/graph"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/metrics"
	"github.com/dd0wney/fedigraph/pkg/parallel"
)

// Options configures the engine.
type Options struct {
	PageRank    algorithms.PageRankOptions
	Eigenvector algorithms.EigenvectorOptions
	// Workers bounds how many measures run at once.
	Workers int
}

// DefaultOptions returns the default engine configuration.
func DefaultOptions() Options {
	return Options{
		PageRank:    algorithms.DefaultPageRankOptions(),
		Eigenvector: algorithms.DefaultEigenvectorOptions(),
		Workers:     4,
	}
}

// Engine computes metric results and partitions. The graph handed to it
// must not be mutated while a call is running.
type Engine struct {
	opts    Options
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewEngine creates an engine. A nil logger or registry disables that output.
func NewEngine(opts Options, logger logging.Logger, reg *metrics.Registry) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		opts:    opts,
		logger:  logger.With(logging.Component("analysis")),
		metrics: reg,
	}
}

// Measure computes every measure over g. Measures run concurrently; each
// failure marks only its own measure undefined and is joined into the
// returned error. An empty graph yields an all-undefined result and
// algorithms.ErrEmptyGraph.
func (e *Engine) Measure(name string, g *graph.Graph) (*MetricResult, error) {
	result := &MetricResult{
		Graph:     name,
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		Measures:  make(map[string]Value, len(measureOrder)),
	}
	log := e.logger.With(logging.GraphName(name))

	if g.NodeCount() == 0 {
		for _, m := range measureOrder {
			result.Measures[m] = Value{Error: algorithms.ErrEmptyGraph.Error(), err: algorithms.ErrEmptyGraph}
			e.record(name, m, algorithms.ErrEmptyGraph, 0)
		}
		log.Warn("graph is empty, all measures undefined")
		return result, algorithms.ErrEmptyGraph
	}

	var mu sync.Mutex
	set := func(measure string, v Value) {
		mu.Lock()
		result.Measures[measure] = v
		mu.Unlock()
	}

	timed := func(measure string, fn func() (Value, error)) func() error {
		return func() error {
			start := time.Now()
			v, err := fn()
			v.Elapsed = time.Since(start)
			if err != nil {
				v.Defined = false
				v.Error = err.Error()
				v.err = err
				log.Warn("measure undefined", logging.Metric(measure), logging.Error(err))
			} else {
				v.Defined = true
				log.Debug("measure computed", logging.Metric(measure), logging.Latency(v.Elapsed))
			}
			set(measure, v)
			e.record(name, measure, err, v.Elapsed)
			if err != nil {
				return fmt.Errorf("%s: %w", measure, err)
			}
			return nil
		}
	}

	timer := logging.StartTimer(log, "measures computed", logging.Count(g.NodeCount()))
	err := parallel.Run(e.opts.Workers,
		timed(MeasureClustering, func() (Value, error) {
			avg, err := algorithms.AverageClusteringCoefficient(g)
			return Value{Scalar: avg}, err
		}),
		timed(MeasurePageRank, func() (Value, error) {
			pr, err := algorithms.PageRank(g, e.opts.PageRank)
			if pr == nil {
				return Value{}, err
			}
			mu.Lock()
			result.PageRankIterations = pr.Iterations
			mu.Unlock()
			return Value{Scores: pr.Scores}, err
		}),
		timed(MeasureBetweenness, func() (Value, error) {
			scores, err := algorithms.BetweennessCentrality(g)
			return Value{Scores: scores}, err
		}),
		timed(MeasureEigenvector, func() (Value, error) {
			scores, err := algorithms.EigenvectorCentrality(g, e.opts.Eigenvector)
			return Value{Scores: scores}, err
		}),
		func() error {
			// Both averages come from one pass.
			start := time.Now()
			af, err := algorithms.AverageFriends(g)
			elapsed := time.Since(start)
			global := Value{Elapsed: elapsed}
			local := Value{Elapsed: elapsed}
			if err != nil {
				global.Error, global.err = err.Error(), err
				local.Error, local.err = err.Error(), err
			} else {
				global.Defined, global.Scalar = true, af.GlobalAverage
				local.Defined, local.Scalar, local.Scores = true, af.LocalAverage, af.PerNode
			}
			set(MeasureGlobalAverage, global)
			set(MeasureLocalAverage, local)
			e.record(name, MeasureGlobalAverage, err, elapsed)
			e.record(name, MeasureLocalAverage, err, elapsed)
			if err != nil {
				return fmt.Errorf("%s: %w", MeasureGlobalAverage, err)
			}
			return nil
		},
		timed(MeasureDegreeDist, func() (Value, error) {
			dist, err := algorithms.DegreeDistribution(g)
			mu.Lock()
			result.DegreeDistribution = dist
			mu.Unlock()
			return Value{}, err
		}),
		timed(MeasureConnectivity, func() (Value, error) {
			knn, err := algorithms.AverageDegreeConnectivity(g)
			mu.Lock()
			result.DegreeConnectivity = knn
			mu.Unlock()
			return Value{}, err
		}),
		timed(MeasureComponents, func() (Value, error) {
			cc, err := algorithms.ConnectedComponents(g)
			if err != nil {
				return Value{}, err
			}
			largest := 0
			for _, c := range cc.Communities {
				largest = max(largest, c.Size)
			}
			mu.Lock()
			result.LargestComponent = largest
			mu.Unlock()
			return Value{Scalar: float64(cc.CommunityCount())}, nil
		}),
	)
	if err != nil {
		timer.EndError(err)
	} else {
		timer.End()
	}

	if v, ok := result.Measures[MeasureClustering]; ok && v.Defined && e.metrics != nil {
		e.metrics.RecordClustering(name, v.Scalar)
	}
	return result, err
}

// Partition detects communities in g. A directed graph is projected to its
// undirected form first. An empty graph yields an undefined partition and
// algorithms.ErrEmptyGraph.
func (e *Engine) Partition(name string, g *graph.Graph) (*Partition, error) {
	p := &Partition{Graph: name}
	log := e.logger.With(logging.GraphName(name))
	start := time.Now()

	if g.Directed() {
		g = g.ToUndirected()
		p.Projected = true
	}

	res, err := algorithms.DetectCommunities(g)
	elapsed := time.Since(start)
	e.record(name, "communities", err, elapsed)
	if err != nil {
		p.Error = err.Error()
		log.Warn("community detection failed", logging.Error(err))
		return p, err
	}

	p.Defined = true
	p.Modularity = res.Modularity
	p.Levels = res.Levels
	p.Assignment = res.NodeCommunity
	p.Communities = res.Communities

	if e.metrics != nil {
		e.metrics.RecordPartition(name, res.CommunityCount(), res.Modularity)
	}
	log.Info("communities detected",
		logging.Count(res.CommunityCount()),
		logging.Float64("modularity", res.Modularity),
		logging.Latency(elapsed))
	return p, nil
}

func (e *Engine) record(graphName, measure string, err error, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordMeasure(graphName, measure, failureReason(err), elapsed)
}

func failureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, algorithms.ErrEmptyGraph):
		return "empty_graph"
	case errors.Is(err, algorithms.ErrNotConverged):
		return "not_converged"
	default:
		return "error"
	}
}
