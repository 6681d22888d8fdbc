package network

import (
	"errors"
	"fmt"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// ErrInvalidThreshold is returned for prune thresholds below 1
var ErrInvalidThreshold = errors.New("prune threshold must be at least 1")

// PruneStats describes what a Prune call removed
type PruneStats struct {
	NodesRemoved int `json:"nodes_removed"`
	EdgesRemoved int `json:"edges_removed"` // includes edges incident to removed nodes
	NodesLeft    int `json:"nodes_left"`
	EdgesLeft    int `json:"edges_left"`
}

// Exhausted reports whether pruning left an empty graph
func (s PruneStats) Exhausted() bool { return s.NodesLeft == 0 }

// Prune removes every node whose degree is below minDegree, using degrees
// measured once before any removal. On directed graphs it then removes every
// surviving edge lighter than minWeight. g is mutated and returned.
func Prune(g *graph.Graph, minWeight, minDegree int) (*graph.Graph, PruneStats, error) {
	if minWeight < 1 || minDegree < 1 {
		return g, PruneStats{}, fmt.Errorf("%w: min_weight=%d min_degree=%d", ErrInvalidThreshold, minWeight, minDegree)
	}

	edgesBefore := g.EdgeCount()
	degrees := g.Degrees()

	var doomed []string
	for _, id := range g.NodeIDs() {
		if degrees[id] < minDegree {
			doomed = append(doomed, id)
		}
	}
	stats := PruneStats{NodesRemoved: g.RemoveNodes(doomed)}

	if g.Directed() {
		for _, e := range g.Edges() {
			if e.Weight < minWeight {
				_ = g.RemoveEdge(e.From, e.To)
			}
		}
	}

	stats.NodesLeft = g.NodeCount()
	stats.EdgesLeft = g.EdgeCount()
	stats.EdgesRemoved = edgesBefore - stats.EdgesLeft
	return g, stats, nil
}
