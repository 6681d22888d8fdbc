package algorithms

import "github.com/dd0wney/fedigraph/pkg/graph"

// indexedGraph is a dense snapshot of a graph. Node i is the i-th node in
// insertion order; every adjacency list follows the graph's edge order.
type indexedGraph struct {
	directed bool
	ids      []string
	index    map[string]int

	out     [][]int     // successors; all neighbours when undirected
	outW    [][]float64 // edge weights parallel to out
	in      [][]int     // predecessors; same as out when undirected
	sym     [][]int     // distinct neighbours in either direction, self excluded
	selfLps []bool
}

func newIndexedGraph(g *graph.Graph) *indexedGraph {
	ids := g.NodeIDs()
	ig := &indexedGraph{
		directed: g.Directed(),
		ids:      ids,
		index:    make(map[string]int, len(ids)),
		out:      make([][]int, len(ids)),
		outW:     make([][]float64, len(ids)),
		sym:      make([][]int, len(ids)),
		selfLps:  make([]bool, len(ids)),
	}
	for i, id := range ids {
		ig.index[id] = i
	}

	for i, id := range ids {
		for _, to := range g.Successors(id) {
			j := ig.index[to]
			e, _ := g.Edge(id, to)
			ig.out[i] = append(ig.out[i], j)
			ig.outW[i] = append(ig.outW[i], float64(e.Weight))
			if j == i {
				ig.selfLps[i] = true
			}
		}
		for _, nb := range g.Neighbors(id) {
			if j := ig.index[nb]; j != i {
				ig.sym[i] = append(ig.sym[i], j)
			}
		}
	}

	if ig.directed {
		ig.in = make([][]int, len(ids))
		for i, id := range ids {
			for _, from := range g.Predecessors(id) {
				ig.in[i] = append(ig.in[i], ig.index[from])
			}
		}
	} else {
		ig.in = ig.out
	}
	return ig
}

func (ig *indexedGraph) len() int { return len(ig.ids) }

// degree mirrors graph.Graph.Degree
func (ig *indexedGraph) degree(i int) int {
	if ig.directed {
		return len(ig.out[i]) + len(ig.in[i])
	}
	if ig.selfLps[i] {
		return len(ig.out[i]) + 1
	}
	return len(ig.out[i])
}

// scores maps a dense vector back onto node ids
func (ig *indexedGraph) scores(vec []float64) map[string]float64 {
	out := make(map[string]float64, len(vec))
	for i, v := range vec {
		out[ig.ids[i]] = v
	}
	return out
}
