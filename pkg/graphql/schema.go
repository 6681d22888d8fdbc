// Package graphql exposes a saved run report through a read-only GraphQL
// schema, so reports can be queried from the command line.
package graphql

import (
	"fmt"
	"sort"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/fedigraph/pkg/analysis"
	"github.com/dd0wney/fedigraph/pkg/report"
)

// nodeView is one node's scores across every per-node measure of a graph.
type nodeView struct {
	id        string
	graph     *report.GraphReport
	community *int
}

var scalarMeasures = map[string]bool{
	analysis.MeasureClustering:    true,
	analysis.MeasureGlobalAverage: true,
	analysis.MeasureLocalAverage:  true,
	analysis.MeasureComponents:    true,
}

type measureView struct {
	name  string
	value analysis.Value
}

func field(typ graphql.Output, resolve graphql.FieldResolveFn) *graphql.Field {
	return &graphql.Field{Type: typ, Resolve: resolve}
}

var pruneType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Prune",
	Fields: graphql.Fields{
		"nodesRemoved": field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(*pruneView).NodesRemoved, nil }),
		"edgesRemoved": field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(*pruneView).EdgesRemoved, nil }),
		"nodesLeft":    field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(*pruneView).NodesLeft, nil }),
		"edgesLeft":    field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(*pruneView).EdgesLeft, nil }),
	},
})

type pruneView struct {
	NodesRemoved, EdgesRemoved, NodesLeft, EdgesLeft int
}

var measureType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Measure",
	Fields: graphql.Fields{
		"name":    field(graphql.String, func(p graphql.ResolveParams) (any, error) { return p.Source.(measureView).name, nil }),
		"defined": field(graphql.Boolean, func(p graphql.ResolveParams) (any, error) { return p.Source.(measureView).value.Defined, nil }),
		"scalar": field(graphql.Float, func(p graphql.ResolveParams) (any, error) {
			m := p.Source.(measureView)
			if !m.value.Defined || !scalarMeasures[m.name] {
				return nil, nil
			}
			return m.value.Scalar, nil
		}),
		"error": field(graphql.String, func(p graphql.ResolveParams) (any, error) {
			if e := p.Source.(measureView).value.Error; e != "" {
				return e, nil
			}
			return nil, nil
		}),
		"elapsedMs": field(graphql.Float, func(p graphql.ResolveParams) (any, error) {
			return float64(p.Source.(measureView).value.Elapsed) / float64(time.Millisecond), nil
		}),
	},
})

var rankedNodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RankedNode",
	Fields: graphql.Fields{
		"nodeId": field(graphql.String, func(p graphql.ResolveParams) (any, error) { return p.Source.(rankedView).id, nil }),
		"score":  field(graphql.Float, func(p graphql.ResolveParams) (any, error) { return p.Source.(rankedView).score, nil }),
	},
})

type rankedView struct {
	id    string
	score float64
}

var scoreType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Score",
	Fields: graphql.Fields{
		"measure": field(graphql.String, func(p graphql.ResolveParams) (any, error) { return p.Source.(rankedView).id, nil }),
		"value":   field(graphql.Float, func(p graphql.ResolveParams) (any, error) { return p.Source.(rankedView).score, nil }),
	},
})

var nodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Node",
	Fields: graphql.Fields{
		"id": field(graphql.String, func(p graphql.ResolveParams) (any, error) { return p.Source.(*nodeView).id, nil }),
		"community": field(graphql.Int, func(p graphql.ResolveParams) (any, error) {
			if c := p.Source.(*nodeView).community; c != nil {
				return *c, nil
			}
			return nil, nil
		}),
		"scores": field(graphql.NewList(scoreType), func(p graphql.ResolveParams) (any, error) {
			n := p.Source.(*nodeView)
			var out []rankedView
			if n.graph.Metrics == nil {
				return out, nil
			}
			for _, m := range analysis.ScoreMeasures {
				if scores, ok := n.graph.Metrics.Scores(m); ok {
					if v, ok := scores[n.id]; ok {
						out = append(out, rankedView{id: m, score: v})
					}
				}
			}
			return out, nil
		}),
	},
})

var communityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Community",
	Fields: graphql.Fields{
		"id":      field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(communityView).ID, nil }),
		"size":    field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(communityView).Size, nil }),
		"density": field(graphql.Float, func(p graphql.ResolveParams) (any, error) { return p.Source.(communityView).Density, nil }),
		"nodes":   field(graphql.NewList(graphql.String), func(p graphql.ResolveParams) (any, error) { return p.Source.(communityView).Nodes, nil }),
	},
})

type communityView struct {
	ID, Size int
	Density  float64
	Nodes    []string
}

var partitionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Partition",
	Fields: graphql.Fields{
		"defined":    field(graphql.Boolean, func(p graphql.ResolveParams) (any, error) { return p.Source.(*analysis.Partition).Defined, nil }),
		"modularity": field(graphql.Float, func(p graphql.ResolveParams) (any, error) { return p.Source.(*analysis.Partition).Modularity, nil }),
		"count":      field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(*analysis.Partition).CommunityCount(), nil }),
		"projected":  field(graphql.Boolean, func(p graphql.ResolveParams) (any, error) { return p.Source.(*analysis.Partition).Projected, nil }),
		"communities": &graphql.Field{
			Type: graphql.NewList(communityType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				part := p.Source.(*analysis.Partition)
				out := make([]communityView, 0, len(part.Communities))
				for _, c := range part.Communities {
					out = append(out, communityView{ID: c.ID, Size: c.Size, Density: c.Density, Nodes: c.Nodes})
				}
				sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
				if limit, ok := p.Args["limit"].(int); ok && limit >= 0 && limit < len(out) {
					out = out[:limit]
				}
				return out, nil
			},
		},
	},
})

var toxicityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Toxicity",
	Fields: graphql.Fields{
		"nodes":       field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(toxicityView).Nodes, nil }),
		"candidates":  field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(toxicityView).Candidates, nil }),
		"scored":      field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(toxicityView).Scored, nil }),
		"toxic":       field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(toxicityView).Toxic, nil }),
		"unparseable": field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(toxicityView).Unparseable, nil }),
		"failed":      field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(toxicityView).Failed, nil }),
	},
})

type toxicityView struct {
	Nodes, Candidates, Scored, Toxic, Unparseable, Failed int
}

var graphType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Graph",
	Fields: graphql.Fields{
		"name":      field(graphql.String, func(p graphql.ResolveParams) (any, error) { return p.Source.(*report.GraphReport).Name, nil }),
		"directed":  field(graphql.Boolean, func(p graphql.ResolveParams) (any, error) { return p.Source.(*report.GraphReport).Stats.Directed, nil }),
		"nodeCount": field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(*report.GraphReport).Stats.NodeCount, nil }),
		"edgeCount": field(graphql.Int, func(p graphql.ResolveParams) (any, error) { return p.Source.(*report.GraphReport).Stats.EdgeCount, nil }),
		"prune": field(pruneType, func(p graphql.ResolveParams) (any, error) {
			s := p.Source.(*report.GraphReport).Prune
			if s == nil {
				return nil, nil
			}
			return &pruneView{s.NodesRemoved, s.EdgesRemoved, s.NodesLeft, s.EdgesLeft}, nil
		}),
		"measures": field(graphql.NewList(measureType), func(p graphql.ResolveParams) (any, error) {
			g := p.Source.(*report.GraphReport)
			if g.Metrics == nil {
				return nil, nil
			}
			names := make([]string, 0, len(g.Metrics.Measures))
			for name := range g.Metrics.Measures {
				names = append(names, name)
			}
			sort.Strings(names)
			out := make([]measureView, 0, len(names))
			for _, name := range names {
				out = append(out, measureView{name: name, value: g.Metrics.Measures[name]})
			}
			return out, nil
		}),
		"measure": &graphql.Field{
			Type: measureType,
			Args: graphql.FieldConfigArgument{
				"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				g := p.Source.(*report.GraphReport)
				name := p.Args["name"].(string)
				if g.Metrics == nil {
					return nil, nil
				}
				v, ok := g.Metrics.Measures[name]
				if !ok {
					return nil, fmt.Errorf("unknown measure %q", name)
				}
				return measureView{name: name, value: v}, nil
			},
		},
		"top": &graphql.Field{
			Type: graphql.NewList(rankedNodeType),
			Args: graphql.FieldConfigArgument{
				"measure": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				g := p.Source.(*report.GraphReport)
				measure := p.Args["measure"].(string)
				limit, _ := p.Args["limit"].(int)
				var out []rankedView
				if g.Metrics != nil {
					for _, r := range g.Metrics.Top(measure, limit) {
						out = append(out, rankedView{id: r.NodeID, score: r.Score})
					}
					if out != nil {
						return out, nil
					}
				}
				for i, r := range g.Top[measure] {
					if i >= limit {
						break
					}
					out = append(out, rankedView{id: r.NodeID, score: r.Score})
				}
				return out, nil
			},
		},
		"node": &graphql.Field{
			Type: nodeType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				g := p.Source.(*report.GraphReport)
				n := &nodeView{id: p.Args["id"].(string), graph: g}
				if g.Partition != nil {
					if c, ok := g.Partition.Assignment[n.id]; ok {
						n.community = &c
					}
				}
				return n, nil
			},
		},
		"communities": field(partitionType, func(p graphql.ResolveParams) (any, error) {
			if part := p.Source.(*report.GraphReport).Partition; part != nil {
				return part, nil
			}
			return nil, nil
		}),
		"toxicity": field(toxicityType, func(p graphql.ResolveParams) (any, error) {
			t := p.Source.(*report.GraphReport).Toxicity
			if t == nil {
				return nil, nil
			}
			return toxicityView{t.Nodes, t.Candidates, t.Scored, t.Toxic, t.Unparseable, t.Failed}, nil
		}),
	},
})

// GenerateSchema builds the query schema over one report.
func GenerateSchema(r *report.Report) (graphql.Schema, error) {
	runType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Run",
		Fields: graphql.Fields{
			"id":         field(graphql.String, func(graphql.ResolveParams) (any, error) { return r.RunID, nil }),
			"startedAt":  field(graphql.String, func(graphql.ResolveParams) (any, error) { return r.StartedAt.Format(time.RFC3339), nil }),
			"durationMs": field(graphql.Float, func(graphql.ResolveParams) (any, error) { return float64(r.Duration) / float64(time.Millisecond), nil }),
			"postCount":  field(graphql.Int, func(graphql.ResolveParams) (any, error) { return r.PostCount, nil }),
			"userCount":  field(graphql.Int, func(graphql.ResolveParams) (any, error) { return r.UserCount, nil }),
			"published":  field(graphql.String, func(graphql.ResolveParams) (any, error) { return r.Published, nil }),
			"warnings":   field(graphql.NewList(graphql.String), func(graphql.ResolveParams) (any, error) { return r.Warnings, nil }),
			"artifacts":  field(graphql.NewList(graphql.String), func(graphql.ResolveParams) (any, error) { return r.Artifacts, nil }),
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"run":    field(runType, func(graphql.ResolveParams) (any, error) { return r, nil }),
			"graphs": field(graphql.NewList(graphType), func(graphql.ResolveParams) (any, error) { return r.Graphs, nil }),
			"graph": &graphql.Field{
				Type: graphType,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if g := r.Graph(p.Args["name"].(string)); g != nil {
						return g, nil
					}
					return nil, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}
