package visualization

import (
	"math"
	"math/rand"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// ForceDirectedLayout is a Fruchterman-Reingold spring embedder with a
// linear cooling schedule.
type ForceDirectedLayout struct {
	config LayoutConfig
}

func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	return &ForceDirectedLayout{config: config.withDefaults()}
}

// ComputeLayout computes positions using force-directed algorithm. Edge
// direction is ignored. Positions are reproducible for a fixed seed.
func (fdl *ForceDirectedLayout) ComputeLayout(g *graph.Graph) (map[string]Position, error) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return make(map[string]Position), nil
	}

	// Single node - center it
	if len(ids) == 1 {
		return map[string]Position{
			ids[0]: {X: fdl.config.Width / 2, Y: fdl.config.Height / 2},
		}, nil
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	// Initialize seeded random positions
	rng := rand.New(rand.NewSource(fdl.config.Seed))
	positions := make([]Position, len(ids))
	for i := range positions {
		positions[i] = Position{
			X: rng.Float64()*(fdl.config.Width-2*fdl.config.Padding) + fdl.config.Padding,
			Y: rng.Float64()*(fdl.config.Height-2*fdl.config.Padding) + fdl.config.Padding,
		}
	}

	// Adjacency by index, self-loops dropped
	adj := make([][]int, len(ids))
	for i, id := range ids {
		for _, nb := range g.Neighbors(id) {
			if j := index[nb]; j != i {
				adj[i] = append(adj[i], j)
			}
		}
	}

	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(ids))) // Optimal distance
	temperature := fdl.config.Width / 10.0
	forces := make([]Position, len(ids))

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		for i := range forces {
			forces[i] = Position{}
		}

		// Repulsion between all nodes
		for i := range positions {
			for j := i + 1; j < len(positions); j++ {
				dx := positions[i].X - positions[j].X
				dy := positions[i].Y - positions[j].Y
				dist := math.Max(math.Sqrt(dx*dx+dy*dy), 0.01)

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[i].X += fx
				forces[i].Y += fy
				forces[j].X -= fx
				forces[j].Y -= fy
			}
		}

		// Attraction between connected nodes
		for i, neighbours := range adj {
			for _, j := range neighbours {
				dx := positions[i].X - positions[j].X
				dy := positions[i].Y - positions[j].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				forces[i].X -= (dx / dist) * force
				forces[i].Y -= (dy / dist) * force
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for i, f := range forces {
			force := math.Sqrt(f.X*f.X + f.Y*f.Y)
			if force > 0 {
				step := math.Min(force, temperature) * cool
				positions[i].X += (f.X / force) * step
				positions[i].Y += (f.Y / force) * step
			}
		}

		temperature *= 0.95
	}

	byID := make(map[string]Position, len(ids))
	for i, id := range ids {
		byID[id] = positions[i]
	}
	return fitToCanvas(byID, fdl.config), nil
}
