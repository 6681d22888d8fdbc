package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeCreatesBareEndpoints(t *testing.T) {
	g := NewDirected()
	require.NoError(t, g.AddNode(Node{ID: "p1", Post: &PostInfo{Content: "hi", Author: "ann"}}))
	require.NoError(t, g.AddEdge(Edge{From: "p1", To: "bob", Weight: 1, Relation: RelationMention}))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	target, ok := g.Node("bob")
	require.True(t, ok)
	assert.False(t, target.HasContent())

	source, ok := g.Node("p1")
	require.True(t, ok)
	assert.True(t, source.HasContent())
}

func TestAddNodeMergesBundles(t *testing.T) {
	g := NewDirected()
	require.NoError(t, g.AddEdge(Edge{From: "a", To: "b", Weight: 2}))
	require.NoError(t, g.AddNode(Node{ID: "b", Post: &PostInfo{Author: "carol"}}))
	require.NoError(t, g.AddNode(Node{ID: "b"}))

	n, ok := g.Node("b")
	require.True(t, ok)
	require.NotNil(t, n.Post)
	assert.Equal(t, "carol", n.Post.Author)
	assert.Equal(t, []string{"a", "b"}, g.NodeIDs())
}

func TestEmptyIDsRejected(t *testing.T) {
	g := NewUndirected()
	assert.ErrorIs(t, g.AddNode(Node{}), ErrEmptyNodeID)
	assert.ErrorIs(t, g.AddEdge(Edge{From: "a"}), ErrEmptyNodeID)
}

func TestDirectedEdgeOverwrite(t *testing.T) {
	g := NewDirected()
	require.NoError(t, g.AddEdge(Edge{From: "a", To: "b", Weight: 1, Relation: RelationMention}))
	require.NoError(t, g.AddEdge(Edge{From: "a", To: "b", Weight: 3, Relation: RelationReblog}))
	require.NoError(t, g.AddEdge(Edge{From: "b", To: "a", Weight: 2, Relation: RelationReply}))

	assert.Equal(t, 2, g.EdgeCount())
	e, ok := g.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 3, e.Weight)
	assert.Equal(t, RelationReblog, e.Relation)
}

func TestUndirectedEdgeOverwrite(t *testing.T) {
	g := NewUndirected()
	require.NoError(t, g.AddEdge(Edge{From: "u1", To: "u2", Weight: 1, Relation: RelationFollower}))
	require.NoError(t, g.AddEdge(Edge{From: "u2", To: "u1", Weight: 1, Relation: RelationFollowing}))

	assert.Equal(t, 1, g.EdgeCount())
	e, ok := g.Edge("u1", "u2")
	require.True(t, ok)
	assert.Equal(t, RelationFollowing, e.Relation)
	assert.Equal(t, "u1", e.From)
	assert.True(t, g.HasEdge("u2", "u1"))
	assert.Len(t, g.Edges(), 1)
}

func TestDegrees(t *testing.T) {
	t.Run("directed", func(t *testing.T) {
		g := NewDirected()
		require.NoError(t, g.AddEdge(Edge{From: "a", To: "b"}))
		require.NoError(t, g.AddEdge(Edge{From: "b", To: "a"}))
		require.NoError(t, g.AddEdge(Edge{From: "a", To: "a"}))

		assert.Equal(t, 4, g.Degree("a"))
		assert.Equal(t, 2, g.OutDegree("a"))
		assert.Equal(t, 2, g.InDegree("a"))
		assert.Equal(t, []string{"b"}, removeSelf(g.Neighbors("a"), "a"))
	})

	t.Run("undirected self-loop counts twice", func(t *testing.T) {
		g := NewUndirected()
		require.NoError(t, g.AddEdge(Edge{From: "a", To: "a"}))
		require.NoError(t, g.AddEdge(Edge{From: "a", To: "b"}))

		assert.Equal(t, 3, g.Degree("a"))
		assert.Equal(t, 1, g.Degree("b"))
		assert.Equal(t, 2, g.EdgeCount())
	})

	t.Run("unknown node", func(t *testing.T) {
		assert.Equal(t, 0, NewDirected().Degree("ghost"))
	})
}

func removeSelf(ids []string, self string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

func TestRemoveNodeDropsIncidentEdges(t *testing.T) {
	for _, directed := range []bool{true, false} {
		g := New(directed)
		require.NoError(t, g.AddEdge(Edge{From: "a", To: "b"}))
		require.NoError(t, g.AddEdge(Edge{From: "b", To: "c"}))
		require.NoError(t, g.AddEdge(Edge{From: "c", To: "b"}))
		require.NoError(t, g.AddEdge(Edge{From: "b", To: "b"}))
		require.NoError(t, g.AddEdge(Edge{From: "a", To: "c"}))

		require.NoError(t, g.RemoveNode("b"))

		assert.Equal(t, []string{"a", "c"}, g.NodeIDs())
		assert.Equal(t, 1, g.EdgeCount())
		for _, e := range g.Edges() {
			assert.NotEqual(t, "b", e.From)
			assert.NotEqual(t, "b", e.To)
		}
		assert.Equal(t, 1, g.Degree("a"))
		assert.ErrorIs(t, g.RemoveNode("b"), ErrNodeNotFound)
	}
}

func TestRemoveNodesBatch(t *testing.T) {
	g := NewUndirected()
	for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}} {
		require.NoError(t, g.AddEdge(Edge{From: pair[0], To: pair[1]}))
	}

	removed := g.RemoveNodes([]string{"a", "d", "a", "missing"})

	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"b", "c"}, g.NodeIDs())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestRemoveEdge(t *testing.T) {
	g := NewUndirected()
	require.NoError(t, g.AddEdge(Edge{From: "a", To: "b"}))
	require.NoError(t, g.RemoveEdge("b", "a"))
	assert.Equal(t, 0, g.EdgeCount())
	assert.False(t, g.HasEdge("a", "b"))
	assert.ErrorIs(t, g.RemoveEdge("a", "b"), ErrEdgeNotFound)
}

func TestToUndirected(t *testing.T) {
	g := NewDirected()
	require.NoError(t, g.AddNode(Node{ID: "a", Post: &PostInfo{Author: "ann"}}))
	require.NoError(t, g.AddEdge(Edge{From: "a", To: "b", Weight: 1, Relation: RelationMention}))
	require.NoError(t, g.AddEdge(Edge{From: "b", To: "a", Weight: 2, Relation: RelationReply}))
	require.NoError(t, g.AddEdge(Edge{From: "b", To: "c", Weight: 3, Relation: RelationReblog}))

	u := g.ToUndirected()

	assert.False(t, u.Directed())
	assert.Equal(t, 3, u.NodeCount())
	assert.Equal(t, 2, u.EdgeCount())
	e, ok := u.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 2, e.Weight)
	n, _ := u.Node("a")
	assert.True(t, n.HasContent())
	assert.Equal(t, 3, g.EdgeCount(), "source graph untouched")
}
