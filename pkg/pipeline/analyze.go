package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dd0wney/fedigraph/pkg/algorithms"
	"github.com/dd0wney/fedigraph/pkg/analysis"
	"github.com/dd0wney/fedigraph/pkg/artifacts"
	"github.com/dd0wney/fedigraph/pkg/config"
	"github.com/dd0wney/fedigraph/pkg/graph"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/network"
	"github.com/dd0wney/fedigraph/pkg/records"
	"github.com/dd0wney/fedigraph/pkg/report"
	"github.com/dd0wney/fedigraph/pkg/toxicity"
)

// MetricsFile is the Prometheus textfile written into the run directory.
const MetricsFile = "metrics.prom"

// ToxicityFile holds the per-node toxicity annotations of the diffusion graph.
const ToxicityFile = "toxicity.json"

// Analyze builds both graphs from the processed record files, prunes,
// annotates and analyzes them, renders the configured views and writes the
// run report. Measure failures and empty graphs are reported as warnings;
// only I/O, malformed records and cancellation abort the run.
func (p *Pipeline) Analyze(ctx context.Context) (*report.Report, error) {
	start := p.now()
	rep := &report.Report{RunID: p.runID, StartedAt: start}
	log := p.logger.With(logging.Operation("analyze"))

	dir, err := artifacts.NewDir(p.cfg.Output.Dir, p.runID)
	if err != nil {
		return nil, err
	}

	posts, err := records.Load[records.Post](p.cfg.Data.ProcessedPosts)
	if err != nil {
		return nil, fmt.Errorf("load processed posts: %w", err)
	}
	users, err := records.Load[records.User](p.cfg.Data.ProcessedUsers)
	if err != nil {
		return nil, fmt.Errorf("load processed users: %w", err)
	}
	p.metrics.RecordRecordsLoaded("posts", len(posts))
	p.metrics.RecordRecordsLoaded("users", len(users))
	rep.PostCount, rep.UserCount = len(posts), len(users)

	graphs, err := p.buildGraphs(posts, users)
	if err != nil {
		return nil, err
	}

	engine := analysis.NewEngine(p.engineOptions(), p.logger, p.metrics)
	for _, name := range []string{config.GraphDiffusion, config.GraphFriendship} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g := graphs[name]
		gr := &report.GraphReport{Name: name}
		rep.Graphs = append(rep.Graphs, gr)

		if p.cfg.Prunes(name) {
			pruned, stats, err := network.Prune(g, p.cfg.Prune.MinWeight, p.cfg.Prune.MinDegree)
			if err != nil {
				return nil, fmt.Errorf("prune %s graph: %w", name, err)
			}
			g = pruned
			gr.Prune = &stats
			p.metrics.RecordPrune(name, stats.NodesRemoved, stats.EdgesRemoved, stats.NodesLeft, stats.EdgesLeft)
			if stats.Exhausted() {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("pruning left the %s graph empty", name))
			}
		}
		gr.Stats = g.Statistics()

		if name == config.GraphDiffusion && p.cfg.Toxicity.Enabled {
			if err := p.annotate(ctx, g, gr, dir); err != nil {
				return nil, err
			}
		}

		if !p.cfg.Analyzes(name) {
			continue
		}
		p.analyzeGraph(engine, name, g, gr, rep, dir)
	}

	if err := p.finish(ctx, rep, dir, start); err != nil {
		return nil, err
	}
	log.Info("analysis finished",
		logging.Count(len(rep.Graphs)),
		logging.Path(dir.Path()),
		logging.Duration("duration", rep.Duration))
	return rep, nil
}

func (p *Pipeline) buildGraphs(posts []records.Post, users []records.User) (map[string]*graph.Graph, error) {
	builders := []struct {
		name  string
		kind  string
		build func() (*graph.Graph, error)
	}{
		{config.GraphDiffusion, "posts", func() (*graph.Graph, error) { return network.BuildDiffusionGraph(posts) }},
		{config.GraphFriendship, "users", func() (*graph.Graph, error) { return network.BuildFriendshipGraph(users) }},
	}

	graphs := make(map[string]*graph.Graph, len(builders))
	for _, b := range builders {
		start := time.Now()
		g, err := b.build()
		if err != nil {
			p.recordMalformed(b.kind, err)
			return nil, fmt.Errorf("build %s graph: %w", b.name, err)
		}
		elapsed := time.Since(start)
		p.metrics.RecordGraphBuilt(b.name, g.NodeCount(), g.EdgeCount(), elapsed)
		p.logger.Info("graph built",
			logging.GraphName(b.name),
			logging.Int("nodes", g.NodeCount()),
			logging.Int("edges", g.EdgeCount()),
			logging.Latency(elapsed))
		graphs[b.name] = g
	}
	return graphs, nil
}

func (p *Pipeline) annotate(ctx context.Context, g *graph.Graph, gr *report.GraphReport, dir *artifacts.Dir) error {
	scorer := p.scorer
	if scorer == nil {
		scorer = toxicity.NewLLMScorer(p.cfg.Toxicity)
	}
	annotator := toxicity.NewAnnotator(scorer, p.cfg.Toxicity.Threshold, p.cfg.Toxicity.Concurrency, p.logger, p.metrics)
	annotations, summary, err := annotator.Annotate(ctx, g)
	if err != nil {
		return fmt.Errorf("annotate toxicity: %w", err)
	}
	gr.Toxicity = &summary
	return dir.Write(ToxicityFile, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(annotations)
	})
}

func (p *Pipeline) analyzeGraph(engine *analysis.Engine, name string, g *graph.Graph,
	gr *report.GraphReport, rep *report.Report, dir *artifacts.Dir) {

	res, err := engine.Measure(name, g)
	gr.Metrics = res
	switch {
	case errors.Is(err, algorithms.ErrEmptyGraph):
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s graph is empty, measures undefined", name))
	case err != nil:
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s graph: %v", name, err))
	}
	gr.Rank(p.cfg.Analysis.TopN)

	part, err := engine.Partition(name, g)
	gr.Partition = part
	if err != nil && !errors.Is(err, algorithms.ErrEmptyGraph) {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s graph communities: %v", name, err))
	}

	if p.cfg.Render.Enabled && g.NodeCount() > 0 {
		if err := p.render(name, g, res, part, dir); err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("render %s graph: %v", name, err))
		}
	}
}

// finish writes the report and metrics, then publishes the run directory.
func (p *Pipeline) finish(ctx context.Context, rep *report.Report, dir *artifacts.Dir, start time.Time) error {
	rep.Duration = p.now().Sub(start)
	p.metrics.RecordRunDuration(rep.Duration)

	if err := p.metrics.WriteTextfile(dir.Join(MetricsFile)); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	dir.Track(MetricsFile)
	if path := p.cfg.Metrics.Textfile; path != "" {
		if err := p.metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
	}

	dir.Track(report.FileName)
	rep.Artifacts = dir.Files()
	path := dir.Join(report.FileName)
	if err := rep.Save(path); err != nil {
		return err
	}

	pub, err := p.resolvePublisher(ctx)
	if err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("publish: %v", err))
		return rep.Save(path)
	}
	if pub == nil {
		return nil
	}
	loc, err := pub.Publish(ctx, dir, p.runID)
	if err != nil {
		p.logger.Warn("artifact upload failed", logging.Error(err))
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("publish: %v", err))
	} else {
		rep.Published = loc
	}
	// The local copy records the outcome of the upload.
	return rep.Save(path)
}

// resolvePublisher returns the injected publisher, or an S3 publisher when a
// bucket is configured, or nil.
func (p *Pipeline) resolvePublisher(ctx context.Context) (artifacts.Publisher, error) {
	if p.publisher != nil {
		return p.publisher, nil
	}
	s3pub, err := artifacts.NewS3PublisherFromConfig(ctx, p.cfg.Output, p.logger)
	if err != nil || s3pub == nil {
		return nil, err
	}
	return s3pub, nil
}
