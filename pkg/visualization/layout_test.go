package visualization

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/dd0wney/fedigraph/pkg/algorithms"
	"github.com/dd0wney/fedigraph/pkg/graph"
)

func pathOf(t *testing.T, directed bool, ids ...string) *graph.Graph {
	t.Helper()
	g := graph.New(directed)
	for i := 0; i+1 < len(ids); i++ {
		if err := g.AddEdge(graph.Edge{From: ids[i], To: ids[i+1], Weight: 1}); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	return g
}

// TestForceDirectedLayout tests the force-directed layout algorithm
func TestForceDirectedLayout(t *testing.T) {
	g := pathOf(t, false, "alice", "bob", "charlie")

	layout := NewForceDirectedLayout(&LayoutConfig{
		Width:      800,
		Height:     600,
		Iterations: 50,
		Seed:       7,
	})

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	// Verify all nodes have positions
	if len(positions) != 3 {
		t.Errorf("Expected 3 positions, got %d", len(positions))
	}

	// Verify positions are within bounds
	for nodeID, pos := range positions {
		if pos.X < 0 || pos.X > 800 {
			t.Errorf("Node %s X position %f out of bounds", nodeID, pos.X)
		}
		if pos.Y < 0 || pos.Y > 600 {
			t.Errorf("Node %s Y position %f out of bounds", nodeID, pos.Y)
		}
	}

	// The two ends of the path should be furthest apart
	dist12 := distance(positions["alice"], positions["bob"])
	dist23 := distance(positions["bob"], positions["charlie"])
	dist13 := distance(positions["alice"], positions["charlie"])
	if dist13 < dist12 || dist13 < dist23 {
		t.Error("Force-directed layout did not separate unconnected nodes properly")
	}
}

func TestForceDirectedLayout_Seeded(t *testing.T) {
	g := pathOf(t, true, "a", "b", "c", "d", "a")

	first, _ := NewForceDirectedLayout(&LayoutConfig{Width: 400, Height: 400, Seed: 3}).ComputeLayout(g)
	second, _ := NewForceDirectedLayout(&LayoutConfig{Width: 400, Height: 400, Seed: 3}).ComputeLayout(g)

	for id, p := range first {
		if p != second[id] {
			t.Errorf("Node %s: %v != %v for the same seed", id, p, second[id])
		}
	}
}

func TestForceDirectedLayout_Trivial(t *testing.T) {
	layout := NewForceDirectedLayout(&LayoutConfig{Width: 100, Height: 80})

	empty, err := layout.ComputeLayout(graph.NewUndirected())
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected no positions, got %v (%v)", empty, err)
	}

	g := graph.NewUndirected()
	if err := g.AddNode(graph.Node{ID: "solo"}); err != nil {
		t.Fatal(err)
	}
	single, _ := layout.ComputeLayout(g)
	if single["solo"] != (Position{X: 50, Y: 40}) {
		t.Errorf("Single node should be centered, got %v", single["solo"])
	}
}

// TestCircularLayout tests circular layout algorithm
func TestCircularLayout(t *testing.T) {
	g := pathOf(t, false, "0", "1", "2", "3")
	layout, err := NewLayout(LayoutCircular, &LayoutConfig{Width: 400, Height: 400})
	if err != nil {
		t.Fatal(err)
	}

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	center := Position{X: 200, Y: 200}
	radius := 150.0
	for id, pos := range positions {
		if d := distance(pos, center); math.Abs(d-radius) > 1e-9 {
			t.Errorf("Node %s at distance %f from center, want %f", id, d, radius)
		}
	}
	top := positions["0"]
	if math.Abs(top.X-200) > 1e-9 || math.Abs(top.Y-50) > 1e-9 {
		t.Errorf("First node should sit at twelve o'clock, got %v", top)
	}
	if positions["1"].X <= 200 {
		t.Errorf("Second node should be clockwise of the first, got %v", positions["1"])
	}
}

func TestNewLayout_Unknown(t *testing.T) {
	if _, err := NewLayout("spiral", &LayoutConfig{Width: 10, Height: 10}); err == nil {
		t.Error("Expected an error for an unknown layout")
	}
}

func TestFitToCanvas(t *testing.T) {
	cfg := LayoutConfig{Width: 200, Height: 100, Padding: 10}

	in := map[string]Position{"a": {X: -10, Y: 5}, "b": {X: 30, Y: 25}}
	out := fitToCanvas(in, cfg)
	// the y span limits the scale to 4, so x is centered
	if out["a"] != (Position{X: 20, Y: 10}) || out["b"] != (Position{X: 180, Y: 90}) {
		t.Errorf("Unexpected fitted positions: %v", out)
	}

	same := fitToCanvas(map[string]Position{"a": {X: 3, Y: 3}, "b": {X: 3, Y: 3}}, cfg)
	if same["a"] != (Position{X: 100, Y: 50}) || same["b"] != same["a"] {
		t.Errorf("Coincident points should be centered, got %v", same)
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{0, "#440154"},
		{1, "#fde725"},
		{-3, "#440154"},
		{7, "#fde725"},
		{math.NaN(), "#440154"},
		{0.5, "#21918c"},
	}
	for _, tt := range tests {
		if got := Color(tt.t); got != tt.want {
			t.Errorf("Color(%v) = %s, want %s", tt.t, got, tt.want)
		}
	}
}

func TestBuildScene(t *testing.T) {
	g := pathOf(t, true, "p1", "p2", "p3")
	positions := map[string]Position{"p1": {X: 1, Y: 1}, "p2": {X: 2, Y: 2}, "p3": {X: 3, Y: 3}}
	scores := map[string]float64{"p1": 0.1, "p2": 0.5, "p3": 0.9}
	communities := map[string]int{"p1": 0, "p2": 0}

	scene := BuildScene(g, positions, &LayoutConfig{Width: 100, Height: 100}, "PageRank", "pagerank", scores, communities)

	if len(scene.Nodes) != 3 || len(scene.Edges) != 2 {
		t.Fatalf("Expected 3 nodes and 2 edges, got %d and %d", len(scene.Nodes), len(scene.Edges))
	}
	if !scene.Directed {
		t.Error("Scene should be directed")
	}
	low, high := scene.Nodes[0], scene.Nodes[2]
	if low.Radius != minRadius || high.Radius != maxRadius {
		t.Errorf("Radii should span the range, got %f and %f", low.Radius, high.Radius)
	}
	if low.Color != Color(0) || high.Color != Color(1) {
		t.Errorf("Colors should span the ramp, got %s and %s", low.Color, high.Color)
	}
	if low.Community == nil || *low.Community != 0 || high.Community != nil {
		t.Error("Community ids should be attached only where known")
	}

	var buf bytes.Buffer
	if err := scene.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var decoded Scene
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Scene JSON does not decode: %v", err)
	}
	if decoded.Metric != "pagerank" || len(decoded.Nodes) != 3 {
		t.Errorf("Decoded scene mismatch: %+v", decoded)
	}
}

func TestWriteSVG_WellFormed(t *testing.T) {
	g := pathOf(t, false, "<a&b>", "c")
	positions := map[string]Position{"<a&b>": {X: 10, Y: 10}, "c": {X: 50, Y: 50}}
	scene := BuildScene(g, positions, &LayoutConfig{Width: 300, Height: 300}, "Betweenness & more", "betweenness", nil, nil)

	var buf bytes.Buffer
	if err := scene.WriteSVG(&buf); err != nil {
		t.Fatal(err)
	}
	assertWellFormed(t, buf.String())
	if strings.Count(buf.String(), "<circle") != 2 || strings.Count(buf.String(), "<line") != 1 {
		t.Errorf("Unexpected SVG body:\n%s", buf.String())
	}
}

func TestWriteDegreeDistributionSVG(t *testing.T) {
	dist := []algorithms.DegreeCount{{Degree: 0, Count: 3}, {Degree: 1, Count: 120}, {Degree: 10, Count: 4}}

	var buf bytes.Buffer
	if err := WriteDegreeDistributionSVG(&buf, dist, "Degree Distribution", 640, 480); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	assertWellFormed(t, out)
	if got := strings.Count(out, "<circle"); got != 2 {
		t.Errorf("Expected 2 plotted points (degree 0 dropped), got %d", got)
	}
	if !strings.Contains(out, "degree 10: 4") {
		t.Error("Missing point tooltip")
	}
}

func assertWellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			if err != io.EOF {
				t.Fatalf("SVG is not well-formed XML: %v", err)
			}
			return
		}
	}
}

func distance(p1, p2 Position) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}
