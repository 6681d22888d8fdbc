package toxicity

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/fedigraph/pkg/graph"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/metrics"
)

// Annotation is the toxicity label of one node.
type Annotation struct {
	Score float64 `json:"score"`
	Toxic bool    `json:"toxic"`
}

// Summary counts the outcome of an annotation pass.
type Summary struct {
	Nodes       int `json:"nodes"`      // all nodes in the graph
	Candidates  int `json:"candidates"` // nodes carrying content
	Scored      int `json:"scored"`
	Toxic       int `json:"toxic"`
	Unparseable int `json:"unparseable"`
	Failed      int `json:"failed"`
}

// Annotator scores every content-bearing node of a graph.
type Annotator struct {
	scorer      Scorer
	threshold   float64
	concurrency int
	logger      logging.Logger
	metrics     *metrics.Registry
}

// NewAnnotator creates an annotator. A node is toxic when its score is
// strictly above threshold.
func NewAnnotator(scorer Scorer, threshold float64, concurrency int, logger logging.Logger, reg *metrics.Registry) *Annotator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Annotator{
		scorer:      scorer,
		threshold:   threshold,
		concurrency: concurrency,
		logger:      logger.With(logging.Component("toxicity")),
		metrics:     reg,
	}
}

// Annotate returns a side map of annotations keyed by node id. Nodes whose
// score cannot be obtained are left out and counted. The graph is only read.
// An error is returned only when ctx is cancelled.
func (a *Annotator) Annotate(ctx context.Context, g *graph.Graph) (map[string]Annotation, Summary, error) {
	summary := Summary{Nodes: g.NodeCount()}
	annotations := make(map[string]Annotation)
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)

	for _, n := range g.Nodes() {
		if !n.HasContent() {
			continue
		}
		summary.Candidates++
		id, text := n.ID, n.Post.Content

		eg.Go(func() error {
			start := time.Now()
			score, err := a.scorer.Score(ctx, text)
			elapsed := time.Since(start)

			if ctx.Err() != nil {
				return ctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()

			outcome := ""
			switch {
			case errors.Is(err, ErrUnparseableScore):
				summary.Unparseable++
				outcome = "unparseable"
				a.logger.Debug("unparseable score", logging.NodeID(id), logging.Error(err))
			case err != nil:
				summary.Failed++
				outcome = "failed"
				a.logger.Warn("scoring failed", logging.NodeID(id), logging.Error(err))
			default:
				ann := Annotation{Score: score, Toxic: score > a.threshold}
				annotations[id] = ann
				summary.Scored++
				outcome = "clean"
				if ann.Toxic {
					summary.Toxic++
					outcome = "toxic"
				}
			}
			if a.metrics != nil {
				a.metrics.RecordToxicity(outcome, elapsed)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, summary, err
	}

	a.logger.Info("classification complete",
		logging.Int("toxic", summary.Toxic),
		logging.Int("nodes", summary.Nodes),
		logging.Int("unparseable", summary.Unparseable),
		logging.Int("failed", summary.Failed))
	return annotations, summary, nil
}
