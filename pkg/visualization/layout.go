// Package visualization lays out graphs and renders them, colored and sized
// by a node metric, as SVG documents and JSON scenes.
package visualization

import (
	"fmt"
	"math"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// Layout names accepted by NewLayout and the render.layout setting.
const (
	LayoutForce    = "force"
	LayoutCircular = "circular"
)

const (
	defaultPadding    = 50
	defaultIterations = 50
)

// Position is a point on the canvas, origin top left.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig sizes the canvas. Zero Padding and Iterations take defaults.
type LayoutConfig struct {
	Width      float64
	Height     float64
	Iterations int
	Padding    float64
	Seed       int64 // initial positions of the force layout
}

func (c LayoutConfig) withDefaults() LayoutConfig {
	if c.Padding == 0 {
		c.Padding = defaultPadding
	}
	if c.Iterations == 0 {
		c.Iterations = defaultIterations
	}
	return c
}

// Layout assigns every node of a graph a canvas position.
type Layout interface {
	ComputeLayout(g *graph.Graph) (map[string]Position, error)
}

// NewLayout returns the layout registered under name.
func NewLayout(name string, config *LayoutConfig) (Layout, error) {
	switch name {
	case LayoutForce, "":
		return NewForceDirectedLayout(config), nil
	case LayoutCircular:
		return NewCircularLayout(config), nil
	default:
		return nil, fmt.Errorf("unknown layout %q", name)
	}
}

// CircularLayout spaces nodes evenly on a circle in insertion order,
// starting at twelve o'clock and going clockwise.
type CircularLayout struct {
	config LayoutConfig
}

func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	return &CircularLayout{config: config.withDefaults()}
}

func (cl *CircularLayout) ComputeLayout(g *graph.Graph) (map[string]Position, error) {
	ids := g.NodeIDs()
	positions := make(map[string]Position, len(ids))
	if len(ids) == 0 {
		return positions, nil
	}

	cx, cy := cl.config.Width/2, cl.config.Height/2
	radius := math.Max(math.Min(cx, cy)-cl.config.Padding, 0)
	step := 2 * math.Pi / float64(len(ids))

	for i, id := range ids {
		angle := float64(i)*step - math.Pi/2
		positions[id] = Position{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		}
	}
	return positions, nil
}

// fitToCanvas scales positions uniformly into the padded canvas and centers
// them, so the drawing keeps its aspect ratio. Coincident points land in the
// middle of the canvas.
func fitToCanvas(positions map[string]Position, config LayoutConfig) map[string]Position {
	if len(positions) == 0 {
		return positions
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range positions {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	const eps = 1e-9
	spanX, spanY := maxX-minX, maxY-minY
	targetW := config.Width - 2*config.Padding
	targetH := config.Height - 2*config.Padding

	scale := math.Inf(1)
	if spanX > eps {
		scale = math.Min(scale, targetW/spanX)
	}
	if spanY > eps {
		scale = math.Min(scale, targetH/spanY)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}
	offX := config.Padding + (targetW-spanX*scale)/2
	offY := config.Padding + (targetH-spanY*scale)/2

	fitted := make(map[string]Position, len(positions))
	for id, p := range positions {
		fitted[id] = Position{
			X: offX + (p.X-minX)*scale,
			Y: offY + (p.Y-minY)*scale,
		}
	}
	return fitted
}
