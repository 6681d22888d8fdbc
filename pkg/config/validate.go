package config

import (
	"errors"
	"fmt"

	"github.com/dd0wney/fedigraph/pkg/validation"
)

var (
	graphNames  = []string{GraphDiffusion, GraphFriendship}
	renderables = []string{"pagerank", "betweenness", "eigenvector"}
	logLevels   = []string{"debug", "info", "warn", "error"}
	layouts     = []string{"force", "circular"}
)

// Validate checks every section and returns all failures joined, each
// wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	collector := validation.NewConfigValidator("collector").
		URL("base_url", c.Collector.BaseURL).
		NotEmpty("hashtags", c.Collector.Hashtags).
		NotEmpty("seed_users", c.Collector.SeedUsers).
		Positive("min_posts", c.Collector.MinPosts).
		Positive("min_users", c.Collector.MinUsers).
		RangeInt("page_limit", c.Collector.PageLimit, 1, 80).
		PositiveFloat("requests_per_second", c.Collector.RequestsPerSecond).
		NonNegativeDuration("error_pause", c.Collector.ErrorPause).
		MinInt("max_retries", c.Collector.MaxRetries, 0).
		NonNegativeDuration("timeout", c.Collector.Timeout).
		OpenUnitInterval("breaker_failure_ratio", c.Collector.BreakerFailureRatio).
		Positive("breaker_min_requests", c.Collector.BreakerMinRequests).
		NonNegativeDuration("breaker_open_timeout", c.Collector.BreakerOpenTimeout)
	errs = append(errs, collector.Errors()...)

	data := validation.NewConfigValidator("data").
		Required("raw_posts", c.Data.RawPosts).
		Required("raw_users", c.Data.RawUsers).
		Required("processed_posts", c.Data.ProcessedPosts).
		Required("processed_users", c.Data.ProcessedUsers)
	errs = append(errs, data.Errors()...)

	prune := validation.NewConfigValidator("prune").
		MinInt("min_weight", c.Prune.MinWeight, 1).
		MinInt("min_degree", c.Prune.MinDegree, 1)
	for _, g := range c.Prune.Graphs {
		prune.OneOf("graphs", g, graphNames)
	}
	errs = append(errs, prune.Errors()...)

	pagerank := validation.NewConfigValidator("pagerank").
		OpenUnitInterval("damping_factor", c.PageRank.DampingFactor).
		PositiveFloat("tolerance", c.PageRank.Tolerance).
		Positive("max_iterations", c.PageRank.MaxIterations)
	errs = append(errs, pagerank.Errors()...)

	eigenvector := validation.NewConfigValidator("eigenvector").
		PositiveFloat("tolerance", c.Eigenvector.Tolerance).
		Positive("max_iterations", c.Eigenvector.MaxIterations)
	errs = append(errs, eigenvector.Errors()...)

	analysis := validation.NewConfigValidator("analysis").
		NotEmpty("graphs", c.Analysis.Graphs).
		RangeInt("workers", c.Analysis.Workers, 1, 64).
		MinInt("top_n", c.Analysis.TopN, 0)
	for _, g := range c.Analysis.Graphs {
		analysis.OneOf("graphs", g, graphNames)
	}
	errs = append(errs, analysis.Errors()...)

	toxicity := validation.NewConfigValidator("toxicity").
		When(c.Toxicity.Enabled, func(v *validation.ConfigValidator) {
			v.URL("base_url", c.Toxicity.BaseURL).
				Required("model", c.Toxicity.Model).
				RangeFloat("threshold", c.Toxicity.Threshold, 0, 1).
				RangeInt("concurrency", c.Toxicity.Concurrency, 1, 64).
				NonNegativeDuration("timeout", c.Toxicity.Timeout)
		})
	errs = append(errs, toxicity.Errors()...)

	render := validation.NewConfigValidator("render").
		When(c.Render.Enabled, func(v *validation.ConfigValidator) {
			v.Positive("width", c.Render.Width).
				Positive("height", c.Render.Height).
				Positive("iterations", c.Render.Iterations).
				OneOf("layout", c.Render.Layout, layouts)
			for _, m := range c.Render.Metrics {
				v.OneOf("metrics", m, renderables)
			}
		})
	errs = append(errs, render.Errors()...)

	output := validation.NewConfigValidator("output").
		Required("dir", c.Output.Dir).
		When(c.Output.S3Bucket != "", func(v *validation.ConfigValidator) {
			v.Required("s3_region", c.Output.S3Region)
		})
	errs = append(errs, output.Errors()...)

	logCfg := validation.NewConfigValidator("log").
		OneOf("level", c.Log.Level, logLevels)
	errs = append(errs, logCfg.Errors()...)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
