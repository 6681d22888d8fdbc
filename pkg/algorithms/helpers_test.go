package algorithms

import (
	"math"
	"testing"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

const epsilon = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// buildGraph creates a graph from "from", "to" pairs
func buildGraph(t *testing.T, directed bool, pairs ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New(directed)
	for _, p := range pairs {
		if err := g.AddEdge(graph.Edge{From: p[0], To: p[1], Weight: 1}); err != nil {
			t.Fatalf("AddEdge(%v) failed: %v", p, err)
		}
	}
	return g
}

// pathGraph returns the undirected path 0-1-...-(n-1)
func pathGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	pairs := make([][2]string, 0, n-1)
	for i := 0; i+1 < n; i++ {
		pairs = append(pairs, [2]string{itoa(i), itoa(i + 1)})
	}
	return buildGraph(t, false, pairs...)
}

// twoTriangles returns triangles a-b-c and d-e-f joined by the bridge c-d
func twoTriangles(t *testing.T) *graph.Graph {
	t.Helper()
	return buildGraph(t, false,
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"},
		[2]string{"c", "d"},
		[2]string{"d", "e"}, [2]string{"e", "f"}, [2]string{"f", "d"},
	)
}

func itoa(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return digits[i : i+1]
	}
	return itoa(i/10) + digits[i%10:i%10+1]
}
