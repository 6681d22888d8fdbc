package algorithms

import (
	"gonum.org/v1/gonum/floats"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// PageRankOptions configures PageRank algorithm
type PageRankOptions struct {
	DampingFactor float64 // Usually 0.85
	MaxIterations int
	Tolerance     float64 // L1 change between successive rank vectors
	UseWeights    bool    // split rank proportionally to edge weight
}

// DefaultPageRankOptions returns default PageRank configuration
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// PageRankResult contains PageRank scores for all nodes
type PageRankResult struct {
	Scores     map[string]float64 // Node ID -> PageRank score
	Iterations int                // Number of iterations performed
	Converged  bool               // Whether algorithm converged
	Residual   float64            // L1 change of the last iteration
}

// PageRank computes PageRank by power iteration. Undirected edges are
// followed both ways. Nodes without out-edges spread their rank uniformly.
//
// When the iteration cap is reached the last iterate is still returned,
// together with a *ConvergenceError.
func PageRank(g *graph.Graph, opts PageRankOptions) (*PageRankResult, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)
	n := ig.len()
	d := opts.DampingFactor

	// Outgoing weight totals
	outWeight := make([]float64, n)
	for i := range ig.out {
		for k := range ig.out[i] {
			outWeight[i] += pagerankWeight(ig.outW[i][k], opts.UseWeights)
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)

	result := &PageRankResult{}
	for result.Iterations < opts.MaxIterations {
		result.Iterations++

		dangling := 0.0
		for i, w := range outWeight {
			if w == 0 {
				dangling += scores[i]
			}
		}

		base := (1.0-d)/float64(n) + d*dangling/float64(n)
		for i := range next {
			next[i] = base
		}
		for i, targets := range ig.out {
			if outWeight[i] == 0 {
				continue
			}
			share := d * scores[i] / outWeight[i]
			for k, j := range targets {
				next[j] += share * pagerankWeight(ig.outW[i][k], opts.UseWeights)
			}
		}

		result.Residual = floats.Distance(next, scores, 1)
		scores, next = next, scores

		if result.Residual < opts.Tolerance {
			result.Converged = true
			break
		}
	}

	// Normalize scores to sum to 1
	if sum := floats.Sum(scores); sum > 0 {
		floats.Scale(1/sum, scores)
	}
	result.Scores = ig.scores(scores)

	if !result.Converged {
		return result, &ConvergenceError{
			Algorithm:  "pagerank",
			Iterations: result.Iterations,
			Residual:   result.Residual,
			Tolerance:  opts.Tolerance,
		}
	}
	return result, nil
}

func pagerankWeight(w float64, useWeights bool) float64 {
	if !useWeights || w <= 0 {
		return 1
	}
	return w
}
