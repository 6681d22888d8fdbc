package network

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

func mustEdge(t *testing.T, g *graph.Graph, from, to string, w int) {
	t.Helper()
	require.NoError(t, g.AddEdge(graph.Edge{From: from, To: to, Weight: w}))
}

func TestPrune_InvalidThresholds(t *testing.T) {
	g := graph.NewDirected()
	_, _, err := Prune(g, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	_, _, err = Prune(g, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestPrune_DegreeEvaluatedOnce(t *testing.T) {
	// path a-b-c-d: a and d have degree 1, b and c degree 2
	g := graph.NewUndirected()
	mustEdge(t, g, "a", "b", 1)
	mustEdge(t, g, "b", "c", 1)
	mustEdge(t, g, "c", "d", 1)

	out, stats, err := Prune(g, 1, 2)
	require.NoError(t, err)
	assert.Same(t, g, out)

	// b and c drop to degree 1 but survive this call
	assert.Equal(t, []string{"b", "c"}, g.NodeIDs())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, PruneStats{NodesRemoved: 2, EdgesRemoved: 2, NodesLeft: 2, EdgesLeft: 1}, stats)

	_, stats, err = Prune(g, 1, 2)
	require.NoError(t, err)
	assert.True(t, stats.Exhausted())
}

func TestPrune_WeightFilterDirectedOnly(t *testing.T) {
	d := graph.NewDirected()
	mustEdge(t, d, "a", "b", 1)
	mustEdge(t, d, "b", "c", 3)
	mustEdge(t, d, "c", "a", 2)

	_, stats, err := Prune(d, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.NodesRemoved)
	assert.False(t, d.HasEdge("a", "b"))
	assert.True(t, d.HasEdge("b", "c"))
	assert.True(t, d.HasEdge("c", "a"))

	u := graph.NewUndirected()
	mustEdge(t, u, "a", "b", 1)
	_, _, err = Prune(u, 5, 1)
	require.NoError(t, err)
	assert.True(t, u.HasEdge("a", "b"))
}

func buildRandomDirected(codes []int) *graph.Graph {
	g := graph.NewDirected()
	for _, c := range codes {
		from := strconv.Itoa(c % 10)
		to := strconv.Itoa((c / 10) % 10)
		w := (c/100)%3 + 1
		_ = g.AddEdge(graph.Edge{From: from, To: to, Weight: w})
	}
	return g
}

func TestPruneProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	codes := gen.SliceOf(gen.IntRange(0, 999))
	thresholds := gen.IntRange(1, 4)

	properties.Property("prune never grows the graph", prop.ForAll(
		func(c []int, w, d int) bool {
			g := buildRandomDirected(c)
			before := g.NodeCount()
			Prune(g, w, d)
			return g.NodeCount() <= before
		},
		codes, thresholds, thresholds,
	))

	properties.Property("no dangling or light edges survive", prop.ForAll(
		func(c []int, w, d int) bool {
			g := buildRandomDirected(c)
			Prune(g, w, d)
			for _, e := range g.Edges() {
				if !g.HasNode(e.From) || !g.HasNode(e.To) || e.Weight < w {
					return false
				}
			}
			return true
		},
		codes, thresholds, thresholds,
	))

	properties.Property("only nodes below the initial degree are removed", prop.ForAll(
		func(c []int, w, d int) bool {
			g := buildRandomDirected(c)
			degrees := g.Degrees()
			Prune(g, w, d)
			for id, deg := range degrees {
				if g.HasNode(id) != (deg >= d) {
					return false
				}
			}
			return true
		},
		codes, thresholds, thresholds,
	))

	properties.Property("re-pruning at the fixpoint is a no-op", prop.ForAll(
		func(c []int, w, d int) bool {
			g := buildRandomDirected(c)
			for {
				_, stats, _ := Prune(g, w, d)
				if stats.NodesRemoved == 0 && stats.EdgesRemoved == 0 {
					break
				}
			}
			nodes, edges := g.NodeCount(), g.EdgeCount()
			_, stats, _ := Prune(g, w, d)
			return stats.NodesRemoved == 0 && g.NodeCount() == nodes && g.EdgeCount() == edges
		},
		codes, thresholds, thresholds,
	))

	properties.TestingRun(t)
}
