// Package report assembles the results of a run, persists them as JSON and
// presents them in the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dd0wney/fedigraph/pkg/algorithms"
	"github.com/dd0wney/fedigraph/pkg/analysis"
	"github.com/dd0wney/fedigraph/pkg/graph"
	"github.com/dd0wney/fedigraph/pkg/network"
	"github.com/dd0wney/fedigraph/pkg/toxicity"
)

// FileName is the report file written into the run output directory.
const FileName = "report.json"

// Report is the outcome of one pipeline run.
type Report struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
	PostCount int            `json:"post_count"`
	UserCount int            `json:"user_count"`
	Graphs    []*GraphReport `json:"graphs"`
	Artifacts []string       `json:"artifacts,omitempty"`
	Published string         `json:"published,omitempty"` // remote location, if uploaded
	Warnings  []string       `json:"warnings,omitempty"`
}

// GraphReport holds everything computed for one graph.
type GraphReport struct {
	Name      string                             `json:"name"`
	Stats     graph.Statistics                   `json:"stats"`
	Prune     *network.PruneStats                `json:"prune,omitempty"`
	Metrics   *analysis.MetricResult             `json:"metrics,omitempty"`
	Partition *analysis.Partition                `json:"partition,omitempty"`
	Toxicity  *toxicity.Summary                  `json:"toxicity,omitempty"`
	Top       map[string][]algorithms.RankedNode `json:"top,omitempty"`
}

// Graph returns the report for the named graph, or nil.
func (r *Report) Graph(name string) *GraphReport {
	for _, g := range r.Graphs {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Rank fills Top with the n best nodes of every per-node measure.
func (g *GraphReport) Rank(n int) {
	if g.Metrics == nil || n <= 0 {
		return
	}
	g.Top = make(map[string][]algorithms.RankedNode)
	for _, m := range analysis.ScoreMeasures {
		if top := g.Metrics.Top(m, n); top != nil {
			g.Top[m] = top
		}
	}
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}
