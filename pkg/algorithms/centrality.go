package algorithms

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// shortestPathDAG is the result of one breadth-first pass of Brandes' algorithm
type shortestPathDAG struct {
	stack        []int   // nodes in non-decreasing distance from the source
	predecessors [][]int // shortest-path predecessors of each node
	sigma        []float64
}

// bfsFrom counts shortest paths from source along out-edges.
func (ig *indexedGraph) bfsFrom(source int, dag *shortestPathDAG, distance []int) {
	n := ig.len()
	dag.stack = dag.stack[:0]
	for i := 0; i < n; i++ {
		dag.predecessors[i] = dag.predecessors[i][:0]
		dag.sigma[i] = 0
		distance[i] = -1
	}
	dag.sigma[source] = 1
	distance[source] = 0

	queue := []int{source}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		dag.stack = append(dag.stack, v)

		for _, w := range ig.out[v] {
			if distance[w] < 0 {
				queue = append(queue, w)
				distance[w] = distance[v] + 1
			}
			if distance[w] == distance[v]+1 {
				dag.sigma[w] += dag.sigma[v]
				dag.predecessors[w] = append(dag.predecessors[w], v)
			}
		}
	}
}

// accumulate runs the backward dependency pass and adds each node's
// dependency on source into betweenness.
func (dag *shortestPathDAG) accumulate(source int, delta, betweenness []float64) {
	for i := range delta {
		delta[i] = 0
	}
	for i := len(dag.stack) - 1; i >= 0; i-- {
		w := dag.stack[i]
		for _, v := range dag.predecessors[w] {
			delta[v] += (dag.sigma[v] / dag.sigma[w]) * (1.0 + delta[w])
		}
		if w != source {
			betweenness[w] += delta[w]
		}
	}
}

// BetweennessCentrality computes exact betweenness with Brandes' algorithm.
// Raw dependency sums over ordered source/target pairs are divided by
// (n-1)(n-2); with fewer than three nodes every score is 0.
func BetweennessCentrality(g *graph.Graph) (map[string]float64, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)
	n := ig.len()

	betweenness := make([]float64, n)
	dag := &shortestPathDAG{
		stack:        make([]int, 0, n),
		predecessors: make([][]int, n),
		sigma:        make([]float64, n),
	}
	distance := make([]int, n)
	delta := make([]float64, n)

	for s := 0; s < n; s++ {
		ig.bfsFrom(s, dag, distance)
		dag.accumulate(s, delta, betweenness)
	}

	if n > 2 {
		floats.Scale(1.0/float64((n-1)*(n-2)), betweenness)
	} else {
		for i := range betweenness {
			betweenness[i] = 0
		}
	}
	return ig.scores(betweenness), nil
}

// EigenvectorOptions configures eigenvector centrality
type EigenvectorOptions struct {
	MaxIterations int
	Tolerance     float64 // per node; the L1 residual is compared against n*Tolerance
}

// DefaultEigenvectorOptions returns 100 iterations at tolerance 1e-6
func DefaultEigenvectorOptions() EigenvectorOptions {
	return EigenvectorOptions{MaxIterations: 100, Tolerance: 1e-6}
}

// EigenvectorCentrality computes the principal eigenvector of the symmetrized
// adjacency matrix by power iteration on A+I, which shares A's eigenvectors
// and also converges on bipartite graphs. The vector is L2-normalized.
//
// Failing to converge is an error, never a zero result.
func EigenvectorCentrality(g *graph.Graph, opts EigenvectorOptions) (map[string]float64, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)
	n := ig.len()

	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)
	threshold := float64(n) * opts.Tolerance

	residual := math.Inf(1)
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		copy(next, x)
		for i, nbrs := range ig.sym {
			for _, j := range nbrs {
				next[j] += x[i]
			}
			if ig.selfLps[i] {
				next[i] += x[i]
			}
		}

		norm := floats.Norm(next, 2)
		if norm == 0 {
			norm = 1
		}
		floats.Scale(1/norm, next)

		residual = floats.Distance(next, x, 1)
		x, next = next, x
		if residual < threshold {
			return ig.scores(x), nil
		}
	}

	return nil, &ConvergenceError{
		Algorithm:  "eigenvector",
		Iterations: opts.MaxIterations,
		Residual:   residual,
		Tolerance:  threshold,
	}
}
