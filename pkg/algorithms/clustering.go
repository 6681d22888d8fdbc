package algorithms

import "github.com/dd0wney/fedigraph/pkg/graph"

// ClusteringCoefficient computes the local clustering coefficient of every
// node on the undirected projection of g, ignoring self-loops. Nodes with
// fewer than two neighbours score 0.
func ClusteringCoefficient(g *graph.Graph) (map[string]float64, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)
	return ig.scores(ig.localClustering()), nil
}

func (ig *indexedGraph) localClustering() []float64 {
	n := ig.len()
	coefficients := make([]float64, n)

	// mark[w] == v+1 while w is a neighbour of the node v being scored
	mark := make([]int, n)
	for v := 0; v < n; v++ {
		nbrs := ig.sym[v]
		k := len(nbrs)
		if k < 2 {
			continue
		}
		for _, u := range nbrs {
			mark[u] = v + 1
		}

		// Each link among neighbours is seen from both ends
		links := 0
		for _, u := range nbrs {
			for _, w := range ig.sym[u] {
				if mark[w] == v+1 {
					links++
				}
			}
		}
		coefficients[v] = float64(links) / float64(k*(k-1))
	}
	return coefficients
}

// AverageClusteringCoefficient computes the mean local clustering
// coefficient over all nodes.
func AverageClusteringCoefficient(g *graph.Graph) (float64, error) {
	if g.NodeCount() == 0 {
		return 0, ErrEmptyGraph
	}
	coefficients := newIndexedGraph(g).localClustering()

	sum := 0.0
	for _, c := range coefficients {
		sum += c
	}
	return sum / float64(len(coefficients)), nil
}
