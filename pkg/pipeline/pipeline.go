// Package pipeline runs fedigraph end to end: collection, normalization,
// graph construction, pruning, toxicity annotation, analysis, rendering
// and publication of the run artifacts.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/fedigraph/pkg/analysis"
	"github.com/dd0wney/fedigraph/pkg/artifacts"
	"github.com/dd0wney/fedigraph/pkg/algorithms"
	"github.com/dd0wney/fedigraph/pkg/config"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/metrics"
	"github.com/dd0wney/fedigraph/pkg/toxicity"
)

// Pipeline holds the collaborators of a run. A Pipeline is used for a
// single run and is not safe for concurrent use.
type Pipeline struct {
	cfg       *config.Config
	logger    logging.Logger
	metrics   *metrics.Registry
	scorer    toxicity.Scorer
	publisher artifacts.Publisher
	runID     string
	now       func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithScorer replaces the language model scorer built from configuration.
func WithScorer(s toxicity.Scorer) Option {
	return func(p *Pipeline) { p.scorer = s }
}

// WithPublisher replaces the S3 publisher built from configuration.
func WithPublisher(pub artifacts.Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline. A nil logger discards logs and a nil registry
// gets a private one.
func New(cfg *config.Config, logger logging.Logger, reg *metrics.Registry, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	p := &Pipeline{
		cfg:     cfg,
		metrics: reg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.NewString()
	}
	p.logger = logger.With(logging.RunID(p.runID))
	return p, nil
}

// RunID returns the id stamped on logs, artifacts and the report.
func (p *Pipeline) RunID() string { return p.runID }

// Metrics returns the registry the run records into.
func (p *Pipeline) Metrics() *metrics.Registry { return p.metrics }

func (p *Pipeline) engineOptions() analysis.Options {
	return analysis.Options{
		PageRank: algorithms.PageRankOptions{
			DampingFactor: p.cfg.PageRank.DampingFactor,
			MaxIterations: p.cfg.PageRank.MaxIterations,
			Tolerance:     p.cfg.PageRank.Tolerance,
			UseWeights:    p.cfg.PageRank.UseWeights,
		},
		Eigenvector: algorithms.EigenvectorOptions{
			MaxIterations: p.cfg.Eigenvector.MaxIterations,
			Tolerance:     p.cfg.Eigenvector.Tolerance,
		},
		Workers: p.cfg.Analysis.Workers,
	}
}
