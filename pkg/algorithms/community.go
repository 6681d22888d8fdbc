package algorithms

import (
	"fmt"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// ConnectedComponents finds the connected components of g, ignoring edge
// direction. Components are numbered by their first node in insertion order
// and the result carries the modularity of that partition.
func ConnectedComponents(g *graph.Graph) (*CommunityDetectionResult, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)

	assignment := make([]int, ig.len())
	for i := range assignment {
		assignment[i] = -1
	}

	// BFS to find each component
	component := 0
	for start := range assignment {
		if assignment[start] >= 0 {
			continue
		}
		assignment[start] = component
		queue := []int{start}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, w := range ig.sym[v] {
				if assignment[w] < 0 {
					assignment[w] = component
					queue = append(queue, w)
				}
			}
		}
		component++
	}

	return buildCommunityResult(ig, assignment, ig.modularity(assignment), 0), nil
}

// Modularity computes Q = sum over communities of in_c/2m - (tot_c/2m)^2 for
// an unweighted undirected view of g. Every node must be assigned. A graph
// without edges has modularity 0.
func Modularity(g *graph.Graph, partition map[string]int) (float64, error) {
	if g.NodeCount() == 0 {
		return 0, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)

	assignment := make([]int, ig.len())
	for i, id := range ig.ids {
		c, ok := partition[id]
		if !ok {
			return 0, fmt.Errorf("node %q has no community", id)
		}
		assignment[i] = c
	}
	return ig.modularity(assignment), nil
}

func (ig *indexedGraph) modularity(assignment []int) float64 {
	lg := levelGraphFrom(ig)
	if lg.m == 0 {
		return 0
	}

	internal := make(map[int]float64)
	tot := make(map[int]float64)
	for i := 0; i < lg.len(); i++ {
		c := assignment[i]
		tot[c] += lg.degree[i]
		internal[c] += 2 * lg.selfLoop[i]
		for _, j := range lg.nbrs[i] {
			if assignment[j] == c {
				internal[c]++
			}
		}
	}

	m2 := 2 * lg.m
	q := 0.0
	for c, t := range tot {
		q += internal[c]/m2 - (t/m2)*(t/m2)
	}
	return q
}
