package algorithms

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGraph is returned by every measure on a graph with no nodes;
	// the measure is undefined rather than zero.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrNotConverged matches every *ConvergenceError
	ErrNotConverged = errors.New("iteration did not converge")

	// ErrDirectedGraph is returned by community detection on a directed graph
	ErrDirectedGraph = errors.New("community detection requires an undirected graph")
)

// ConvergenceError reports a power iteration that hit its iteration cap
// before the residual fell below tolerance.
type ConvergenceError struct {
	Algorithm  string
	Iterations int
	Residual   float64
	Tolerance  float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence after %d iterations (residual %.3g, tolerance %.3g)",
		e.Algorithm, e.Iterations, e.Residual, e.Tolerance)
}

// Is reports whether target is ErrNotConverged.
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrNotConverged
}
