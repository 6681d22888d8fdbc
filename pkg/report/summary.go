package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/fedigraph/pkg/analysis"
)

const undefined = "undefined"

func scalar(res *analysis.MetricResult, measure string) string {
	if res == nil {
		return undefined
	}
	v, ok := res.Scalar(measure)
	if !ok {
		return undefined
	}
	return fmt.Sprintf("%.4f", v)
}

// graphBox renders the statistics box of one graph.
func graphBox(g *GraphReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s graph\n", g.Name)
	b.WriteString(strings.Repeat("─", 24) + "\n")
	fmt.Fprintf(&b, "Nodes:        %d\n", g.Stats.NodeCount)
	fmt.Fprintf(&b, "Edges:        %d\n", g.Stats.EdgeCount)
	if g.Prune != nil {
		fmt.Fprintf(&b, "Pruned:       %d nodes, %d edges\n", g.Prune.NodesRemoved, g.Prune.EdgesRemoved)
	}
	if g.Metrics != nil {
		fmt.Fprintf(&b, "Clustering:   %s\n", scalar(g.Metrics, analysis.MeasureClustering))
		fmt.Fprintf(&b, "Avg friends:  %s global, %s local\n",
			scalar(g.Metrics, analysis.MeasureGlobalAverage), scalar(g.Metrics, analysis.MeasureLocalAverage))
		if n, ok := g.Metrics.Scalar(analysis.MeasureComponents); ok {
			fmt.Fprintf(&b, "Components:   %d (largest %d nodes)\n", int(n), g.Metrics.LargestComponent)
		} else {
			fmt.Fprintf(&b, "Components:   %s\n", undefined)
		}
	}
	if p := g.Partition; p != nil {
		if p.Defined {
			fmt.Fprintf(&b, "Communities:  %d (modularity %.4f)\n", p.CommunityCount(), p.Modularity)
		} else {
			fmt.Fprintf(&b, "Communities:  %s\n", undefined)
		}
	}
	if t := g.Toxicity; t != nil {
		fmt.Fprintf(&b, "Toxic:        %d out of %d nodes\n", t.Toxic, t.Nodes)
	}
	return strings.TrimRight(b.String(), "\n")
}

// topBox renders the ranking of one measure.
func topBox(g *GraphReport, measure string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top %s\n", measure)
	b.WriteString(strings.Repeat("─", 24) + "\n")
	top := g.Top[measure]
	if len(top) == 0 {
		b.WriteString(undefined)
		return b.String()
	}
	maxScore := top[0].Score
	for i, r := range top {
		if i >= n {
			break
		}
		bar := ""
		if maxScore > 0 {
			bar = strings.Repeat("█", int(r.Score/maxScore*20))
		}
		fmt.Fprintf(&b, "%2d. %-16s %.6f %s\n", i+1, truncate(r.NodeID, 16), r.Score, bar)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// Summary renders a static terminal summary of the report.
func Summary(r *Report) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("fedigraph run " + r.RunID))
	s.WriteString("\n")
	fmt.Fprintf(&s, "  %d posts, %d users, finished in %s\n", r.PostCount, r.UserCount, r.Duration.Round(time.Millisecond))

	for _, g := range r.Graphs {
		boxes := []string{statsBoxStyle.Render(graphBox(g))}
		if len(g.Top) > 0 {
			boxes = append(boxes, statsBoxStyle.Render(topBox(g, analysis.MeasurePageRank, 5)))
		}
		s.WriteString(contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, boxes...)))
		s.WriteString("\n")

		if g.Metrics != nil {
			if names := g.Metrics.Undefined(); len(names) > 0 {
				s.WriteString(warnStyle.Render("  undefined: " + strings.Join(names, ", ")))
				s.WriteString("\n")
			}
		}
	}

	for _, w := range r.Warnings {
		s.WriteString(warnStyle.Render("  ! " + w))
		s.WriteString("\n")
	}
	if r.Published != "" {
		fmt.Fprintf(&s, "  published to %s\n", r.Published)
	}
	return s.String()
}
