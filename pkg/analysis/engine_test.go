package analysis

import (
	"errors"
	"math"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/fedigraph/pkg/algorithms"
	"github.com/dd0wney/fedigraph/pkg/graph"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/metrics"
)

func build(t *testing.T, directed bool, pairs ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New(directed)
	for _, p := range pairs {
		require.NoError(t, g.AddEdge(graph.Edge{From: p[0], To: p[1], Weight: 1}))
	}
	return g
}

func bridgedTriangles(t *testing.T, directed bool) *graph.Graph {
	return build(t, directed,
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"},
		[2]string{"c", "d"},
		[2]string{"d", "e"}, [2]string{"e", "f"}, [2]string{"f", "d"},
	)
}

func TestMeasure_AllDefined(t *testing.T) {
	reg := metrics.NewRegistry()
	engine := NewEngine(DefaultOptions(), logging.NewNopLogger(), reg)

	res, err := engine.Measure("friendship", bridgedTriangles(t, false))
	require.NoError(t, err)

	assert.Equal(t, 6, res.NodeCount)
	assert.Equal(t, 7, res.EdgeCount)
	assert.Empty(t, res.Undefined())

	// a, b, e, f have coefficient 1; c and d have 1/3
	clustering, ok := res.Scalar(MeasureClustering)
	require.True(t, ok)
	assert.InDelta(t, (4+2.0/3)/6, clustering, 1e-9)

	global, ok := res.Scalar(MeasureGlobalAverage)
	require.True(t, ok)
	assert.InDelta(t, 14.0/6, global, 1e-9)

	for _, m := range ScoreMeasures {
		scores, ok := res.Scores(m)
		require.True(t, ok, m)
		assert.Len(t, scores, 6, m)
	}

	pr, _ := res.Scores(MeasurePageRank)
	sum := 0.0
	for _, v := range pr {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
	assert.Positive(t, res.PageRankIterations)

	top := res.Top(MeasureBetweenness, 2)
	require.Len(t, top, 2)
	assert.ElementsMatch(t, []string{"c", "d"}, []string{top[0].NodeID, top[1].NodeID})

	assert.Equal(t, []algorithms.DegreeCount{{Degree: 2, Count: 4}, {Degree: 3, Count: 2}}, res.DegreeDistribution)
	assert.Len(t, res.DegreeConnectivity, 2)

	components, ok := res.Scalar(MeasureComponents)
	require.True(t, ok)
	assert.Equal(t, 1.0, components)
	assert.Equal(t, 6, res.LargestComponent)

	var m dto.Metric
	require.NoError(t, reg.AverageClustering.WithLabelValues("friendship").Write(&m))
	assert.InDelta(t, clustering, m.Gauge.GetValue(), 1e-9)
}

func TestMeasure_DisconnectedGraph(t *testing.T) {
	engine := NewEngine(DefaultOptions(), nil, nil)

	// a directed path, a separate pair and an isolated node
	g := build(t, true, [2]string{"a", "b"}, [2]string{"c", "b"}, [2]string{"x", "y"})
	require.NoError(t, g.AddNode(graph.Node{ID: "z"}))

	// other measures may not converge here; only the component count matters
	res, _ := engine.Measure("diffusion", g)
	require.NotNil(t, res)

	components, ok := res.Scalar(MeasureComponents)
	require.True(t, ok)
	assert.Equal(t, 3.0, components)
	assert.Equal(t, 3, res.LargestComponent)
}

func TestMeasure_EmptyGraph(t *testing.T) {
	reg := metrics.NewRegistry()
	engine := NewEngine(DefaultOptions(), nil, reg)

	res, err := engine.Measure("friendship", graph.NewUndirected())
	require.ErrorIs(t, err, algorithms.ErrEmptyGraph)
	require.NotNil(t, res)

	assert.Len(t, res.Undefined(), len(measureOrder))
	_, ok := res.Scalar(MeasureClustering)
	assert.False(t, ok)
	_, ok = res.Scores(MeasurePageRank)
	assert.False(t, ok)
	assert.Nil(t, res.Top(MeasurePageRank, 3))
	assert.ErrorIs(t, res.Measures[MeasureEigenvector].Err(), algorithms.ErrEmptyGraph)

	c := reg.MeasureFailuresTotal.WithLabelValues("friendship", MeasurePageRank, "empty_graph")
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	assert.Equal(t, 1.0, m.Counter.GetValue())
}

func TestMeasure_ConvergenceFailureIsIsolated(t *testing.T) {
	opts := DefaultOptions()
	opts.Eigenvector.MaxIterations = 2
	engine := NewEngine(opts, nil, nil)

	g := build(t, false,
		[2]string{"0", "1"}, [2]string{"1", "2"}, [2]string{"2", "3"}, [2]string{"3", "4"})
	res, err := engine.Measure("friendship", g)

	require.Error(t, err)
	assert.True(t, errors.Is(err, algorithms.ErrNotConverged))

	var ce *algorithms.ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Iterations)

	assert.Equal(t, []string{MeasureEigenvector}, res.Undefined())
	_, ok := res.Scores(MeasureEigenvector)
	assert.False(t, ok, "a failed measure is not a zero result")
	_, ok = res.Scores(MeasureBetweenness)
	assert.True(t, ok)
}

func TestPartition_TwoTriangles(t *testing.T) {
	reg := metrics.NewRegistry()
	engine := NewEngine(DefaultOptions(), nil, reg)

	p, err := engine.Partition("friendship", bridgedTriangles(t, false))
	require.NoError(t, err)

	assert.True(t, p.Defined)
	assert.False(t, p.Projected)
	assert.Equal(t, 2, p.CommunityCount())
	assert.Greater(t, p.Modularity, 0.3)
	assert.InDelta(t, 5.0/14, p.Modularity, 1e-9)
	assert.Equal(t, p.Assignment["a"], p.Assignment["c"])
	assert.NotEqual(t, p.Assignment["a"], p.Assignment["d"])

	var m dto.Metric
	require.NoError(t, reg.CommunitiesDetected.WithLabelValues("friendship").Write(&m))
	assert.Equal(t, 2.0, m.Gauge.GetValue())
}

func TestPartition_DirectedIsProjected(t *testing.T) {
	engine := NewEngine(DefaultOptions(), nil, nil)

	p, err := engine.Partition("diffusion", bridgedTriangles(t, true))
	require.NoError(t, err)
	assert.True(t, p.Projected)
	assert.Equal(t, 2, p.CommunityCount())
}

func TestPartition_Empty(t *testing.T) {
	engine := NewEngine(DefaultOptions(), nil, nil)

	p, err := engine.Partition("friendship", graph.NewUndirected())
	require.ErrorIs(t, err, algorithms.ErrEmptyGraph)
	assert.False(t, p.Defined)
	assert.NotEmpty(t, p.Error)
}

func TestPartition_NoEdges(t *testing.T) {
	g := graph.NewUndirected()
	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, g.AddNode(graph.Node{ID: id}))
	}

	p, err := NewEngine(DefaultOptions(), nil, nil).Partition("friendship", g)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CommunityCount())
	assert.Equal(t, 0.0, p.Modularity)
	assert.False(t, math.IsNaN(p.Modularity))
}
