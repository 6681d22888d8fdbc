package pipeline

import (
	"fmt"
	"io"

	"github.com/dd0wney/fedigraph/pkg/analysis"
	"github.com/dd0wney/fedigraph/pkg/artifacts"
	"github.com/dd0wney/fedigraph/pkg/graph"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/visualization"
)

const layoutPadding = 20

// render lays g out once and writes one SVG and one JSON scene per
// configured metric, plus the degree distribution plot.
func (p *Pipeline) render(name string, g *graph.Graph, res *analysis.MetricResult,
	part *analysis.Partition, dir *artifacts.Dir) error {

	rc := p.cfg.Render
	lc := &visualization.LayoutConfig{
		Width:      float64(rc.Width),
		Height:     float64(rc.Height),
		Iterations: rc.Iterations,
		Padding:    layoutPadding,
		Seed:       rc.Seed,
	}
	timer := logging.StartTimer(p.logger, "graph rendered", logging.GraphName(name))

	layout, err := visualization.NewLayout(rc.Layout, lc)
	if err != nil {
		timer.EndError(err)
		return err
	}
	positions, err := layout.ComputeLayout(g)
	if err != nil {
		timer.EndError(err)
		return fmt.Errorf("layout: %w", err)
	}

	var communities map[string]int
	if part != nil && part.Defined {
		communities = part.Assignment
	}

	for _, metric := range rc.Metrics {
		scores, ok := res.Scores(metric)
		if !ok {
			p.logger.Warn("metric undefined, view skipped", logging.GraphName(name), logging.Metric(metric))
			continue
		}
		title := fmt.Sprintf("%s graph by %s", name, metric)
		scene := visualization.BuildScene(g, positions, lc, title, metric, scores, communities)

		base := fmt.Sprintf("%s_%s_visualization", name, metric)
		if err := dir.Write(base+".svg", scene.WriteSVG); err != nil {
			timer.EndError(err)
			return err
		}
		if err := dir.Write(base+".json", scene.WriteJSON); err != nil {
			timer.EndError(err)
			return err
		}
	}

	if len(res.DegreeDistribution) > 0 {
		err := dir.Write(name+"_degree_distribution.svg", func(w io.Writer) error {
			return visualization.WriteDegreeDistributionSVG(w, res.DegreeDistribution,
				fmt.Sprintf("%s graph degree distribution", name), float64(rc.Width), float64(rc.Height)/2)
		})
		if err != nil {
			timer.EndError(err)
			return err
		}
	}

	timer.End()
	return nil
}
