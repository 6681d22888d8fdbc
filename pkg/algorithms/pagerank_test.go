package algorithms

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

func sumScores(scores map[string]float64) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum
}

// TestPageRank_EmptyGraph tests PageRank on empty graph
func TestPageRank_EmptyGraph(t *testing.T) {
	_, err := PageRank(graph.NewDirected(), DefaultPageRankOptions())
	if !errors.Is(err, ErrEmptyGraph) {
		t.Fatalf("Expected ErrEmptyGraph, got %v", err)
	}
}

// TestPageRank_SingleNode tests PageRank on single node
func TestPageRank_SingleNode(t *testing.T) {
	g := graph.NewDirected()
	if err := g.AddNode(graph.Node{ID: "solo"}); err != nil {
		t.Fatal(err)
	}

	result, err := PageRank(g, DefaultPageRankOptions())
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}
	if !almostEqual(result.Scores["solo"], 1.0, epsilon) {
		t.Errorf("Expected score 1.0, got %f", result.Scores["solo"])
	}
}

// TestPageRank_Cycle tests that a directed cycle ranks every node equally
func TestPageRank_Cycle(t *testing.T) {
	g := buildGraph(t, true, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	result, err := PageRank(g, DefaultPageRankOptions())
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}
	for id, score := range result.Scores {
		if !almostEqual(score, 1.0/3.0, 1e-6) {
			t.Errorf("Node %s: expected 1/3, got %f", id, score)
		}
	}
	if !result.Converged {
		t.Error("Expected convergence")
	}
}

// TestPageRank_DanglingSink tests that a sink collects the most rank and the total is preserved
func TestPageRank_DanglingSink(t *testing.T) {
	g := buildGraph(t, true, [2]string{"a", "hub"}, [2]string{"b", "hub"}, [2]string{"c", "hub"})

	result, err := PageRank(g, DefaultPageRankOptions())
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}

	if sum := sumScores(result.Scores); !almostEqual(sum, 1.0, 1e-4) {
		t.Errorf("Expected scores to sum to 1, got %f", sum)
	}
	for _, leaf := range []string{"a", "b", "c"} {
		if result.Scores["hub"] <= result.Scores[leaf] {
			t.Errorf("hub (%f) should outrank %s (%f)", result.Scores["hub"], leaf, result.Scores[leaf])
		}
	}
}

// TestPageRank_Undirected tests that undirected edges are followed both ways
func TestPageRank_Undirected(t *testing.T) {
	g := buildGraph(t, false, [2]string{"center", "x"}, [2]string{"center", "y"}, [2]string{"center", "z"})

	result, err := PageRank(g, DefaultPageRankOptions())
	if err != nil {
		t.Fatalf("PageRank failed: %v", err)
	}
	if result.Scores["center"] <= result.Scores["x"] {
		t.Errorf("center should outrank leaves: %v", result.Scores)
	}
	if !almostEqual(result.Scores["x"], result.Scores["z"], 1e-9) {
		t.Errorf("leaves should tie: %v", result.Scores)
	}
}

// TestPageRank_Weights tests that UseWeights biases rank towards heavy edges
func TestPageRank_Weights(t *testing.T) {
	g := graph.NewDirected()
	for _, e := range []graph.Edge{
		{From: "src", To: "light", Weight: 1},
		{From: "src", To: "heavy", Weight: 3},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}

	plain, err := PageRank(g, DefaultPageRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(plain.Scores["light"], plain.Scores["heavy"], 1e-9) {
		t.Errorf("unweighted run should tie light and heavy: %v", plain.Scores)
	}

	opts := DefaultPageRankOptions()
	opts.UseWeights = true
	weighted, err := PageRank(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if weighted.Scores["heavy"] <= weighted.Scores["light"] {
		t.Errorf("heavy should outrank light: %v", weighted.Scores)
	}
}

// TestPageRank_ConvergenceError tests the iteration cap
func TestPageRank_ConvergenceError(t *testing.T) {
	g := buildGraph(t, true, [2]string{"a", "b"}, [2]string{"b", "c"})
	opts := DefaultPageRankOptions()
	opts.MaxIterations = 1

	result, err := PageRank(g, opts)
	if !errors.Is(err, ErrNotConverged) {
		t.Fatalf("Expected ErrNotConverged, got %v", err)
	}
	var ce *ConvergenceError
	if !errors.As(err, &ce) || ce.Algorithm != "pagerank" || ce.Iterations != 1 {
		t.Errorf("unexpected convergence error: %#v", err)
	}
	if result == nil || result.Converged {
		t.Fatal("Expected the unconverged iterate to be returned")
	}
	if sum := sumScores(result.Scores); !almostEqual(sum, 1.0, 1e-9) {
		t.Errorf("Expected normalized scores, sum %f", sum)
	}
}

// TestPageRankSumsToOne checks the invariant on random directed graphs
func TestPageRankSumsToOne(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("scores sum to 1", prop.ForAll(
		func(codes []int, directed bool) bool {
			g := graph.New(directed)
			_ = g.AddNode(graph.Node{ID: "seed"})
			for _, c := range codes {
				_ = g.AddEdge(graph.Edge{From: itoa(c % 12), To: itoa((c / 12) % 12), Weight: 1})
			}
			result, err := PageRank(g, DefaultPageRankOptions())
			if err != nil {
				return false
			}
			return len(result.Scores) == g.NodeCount() && almostEqual(sumScores(result.Scores), 1.0, 1e-4)
		},
		gen.SliceOf(gen.IntRange(0, 143)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
