package visualization

import (
	"encoding/json"
	"io"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// SceneNode is a positioned, styled node.
type SceneNode struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Color     string  `json:"color"`
	Value     float64 `json:"value"`
	Community *int    `json:"community,omitempty"`
}

// SceneEdge is a drawn edge between two scene nodes.
type SceneEdge struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Weight   int            `json:"weight"`
	Relation graph.Relation `json:"relation,omitempty"`
}

// Scene is a renderer-neutral drawing of a graph colored by one metric.
type Scene struct {
	Title    string      `json:"title"`
	Metric   string      `json:"metric"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Directed bool        `json:"directed"`
	Nodes    []SceneNode `json:"nodes"`
	Edges    []SceneEdge `json:"edges"`
}

const (
	minRadius = 3.0
	maxRadius = 15.0
)

// BuildScene styles every positioned node by its score: color on the
// viridis ramp and radius between minRadius and maxRadius. Nodes missing
// from scores get the low end. communities may be nil.
func BuildScene(g *graph.Graph, positions map[string]Position, config *LayoutConfig,
	title, metric string, scores map[string]float64, communities map[string]int) *Scene {

	s := &Scene{
		Title:    title,
		Metric:   metric,
		Width:    config.Width,
		Height:   config.Height,
		Directed: g.Directed(),
		Nodes:    make([]SceneNode, 0, g.NodeCount()),
		Edges:    make([]SceneEdge, 0, g.EdgeCount()),
	}
	sc := newScale(scores)

	for _, id := range g.NodeIDs() {
		pos, ok := positions[id]
		if !ok {
			continue
		}
		v := scores[id]
		t := sc.at(v)
		n := SceneNode{
			ID:     id,
			X:      pos.X,
			Y:      pos.Y,
			Radius: minRadius + (maxRadius-minRadius)*t,
			Color:  Color(t),
			Value:  v,
		}
		if c, ok := communities[id]; ok {
			n.Community = &c
		}
		s.Nodes = append(s.Nodes, n)
	}

	for _, e := range g.Edges() {
		_, okFrom := positions[e.From]
		_, okTo := positions[e.To]
		if okFrom && okTo {
			s.Edges = append(s.Edges, SceneEdge{From: e.From, To: e.To, Weight: e.Weight, Relation: e.Relation})
		}
	}
	return s
}

// WriteJSON writes the scene as indented JSON.
func (s *Scene) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
