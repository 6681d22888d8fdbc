// Package config loads the fedigraph run configuration from a YAML file,
// applies environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

const redacted = "[REDACTED]"

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return redacted }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return redacted }

// MarshalText implements encoding.TextMarshaler. A set secret is written as
// the redacted placeholder and an unset one as an empty string.
func (s Secret) MarshalText() ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	return []byte(redacted), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The redacted
// placeholder reads back as unset so a written config can be loaded again.
func (s *Secret) UnmarshalText(text []byte) error {
	if string(text) == redacted {
		*s = ""
		return nil
	}
	*s = Secret(text)
	return nil
}

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Graph names accepted by analysis.graphs and prune.graphs.
const (
	GraphDiffusion  = "diffusion"
	GraphFriendship = "friendship"
)

// Config holds all application configuration values.
type Config struct {
	Collector   CollectorConfig   `yaml:"collector"`
	Data        DataConfig        `yaml:"data"`
	Prune       PruneConfig       `yaml:"prune"`
	PageRank    PageRankConfig    `yaml:"pagerank"`
	Eigenvector EigenvectorConfig `yaml:"eigenvector"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Toxicity    ToxicityConfig    `yaml:"toxicity"`
	Render      RenderConfig      `yaml:"render"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// CollectorConfig describes the remote instance and the collection targets.
type CollectorConfig struct {
	BaseURL     string   `yaml:"base_url"`
	AccessToken Secret   `yaml:"access_token"`
	Hashtags    []string `yaml:"hashtags"`
	SeedUsers   []string `yaml:"seed_users"`
	MinPosts    int      `yaml:"min_posts"`
	MinUsers    int      `yaml:"min_users"`
	PageLimit   int      `yaml:"page_limit"`

	RequestsPerSecond float64       `yaml:"requests_per_second"`
	ErrorPause        time.Duration `yaml:"error_pause"`
	MaxRetries        int           `yaml:"max_retries"`
	Timeout           time.Duration `yaml:"timeout"`

	BreakerFailureRatio float64       `yaml:"breaker_failure_ratio"`
	BreakerMinRequests  int           `yaml:"breaker_min_requests"`
	BreakerOpenTimeout  time.Duration `yaml:"breaker_open_timeout"`
}

// DataConfig names the raw and processed record files.
type DataConfig struct {
	RawPosts       string `yaml:"raw_posts"`
	RawUsers       string `yaml:"raw_users"`
	ProcessedPosts string `yaml:"processed_posts"`
	ProcessedUsers string `yaml:"processed_users"`
	// Snapshot also writes raw records as snappy-compressed JSONL next to the JSON arrays.
	Snapshot bool `yaml:"snapshot"`
}

// PruneConfig holds the pruning thresholds and the graphs they apply to.
type PruneConfig struct {
	Graphs    []string `yaml:"graphs"`
	MinWeight int      `yaml:"min_weight"`
	MinDegree int      `yaml:"min_degree"`
}

// PageRankConfig mirrors algorithms.PageRankOptions.
type PageRankConfig struct {
	DampingFactor float64 `yaml:"damping_factor"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	UseWeights    bool    `yaml:"use_weights"`
}

// EigenvectorConfig mirrors algorithms.EigenvectorOptions.
type EigenvectorConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

// AnalysisConfig selects the graphs to analyze.
type AnalysisConfig struct {
	Graphs  []string `yaml:"graphs"`
	Workers int      `yaml:"workers"`
	TopN    int      `yaml:"top_n"`
}

// ToxicityConfig configures the language model used for toxicity scoring.
type ToxicityConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      Secret        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Threshold   float64       `yaml:"threshold"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RenderConfig configures the SVG renderings.
type RenderConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Iterations int      `yaml:"iterations"`
	Seed       int64    `yaml:"seed"`
	Layout     string   `yaml:"layout"` // force or circular
	Metrics    []string `yaml:"metrics"`
}

// OutputConfig configures where run artifacts go.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
	S3Region string `yaml:"s3_region"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Collector: CollectorConfig{
			BaseURL:             "https://mastodon.social",
			Hashtags:            []string{"climatechange", "politics", "technology", "opensource", "fediverse"},
			SeedUsers:           []string{"Gargron"},
			MinPosts:            1000,
			MinUsers:            500,
			PageLimit:           40,
			RequestsPerSecond:   1,
			ErrorPause:          5 * time.Second,
			MaxRetries:          3,
			Timeout:             30 * time.Second,
			BreakerFailureRatio: 0.6,
			BreakerMinRequests:  5,
			BreakerOpenTimeout:  30 * time.Second,
		},
		Data: DataConfig{
			RawPosts:       "data/raw/keyword_posts.json",
			RawUsers:       "data/raw/user_data.json",
			ProcessedPosts: "data/processed/processed_posts.json",
			ProcessedUsers: "data/processed/processed_users.json",
		},
		Prune: PruneConfig{
			MinWeight: 1,
			MinDegree: 1,
		},
		PageRank: PageRankConfig{
			DampingFactor: 0.85,
			Tolerance:     1e-6,
			MaxIterations: 100,
		},
		Eigenvector: EigenvectorConfig{
			Tolerance:     1e-6,
			MaxIterations: 100,
		},
		Analysis: AnalysisConfig{
			Graphs:  []string{GraphFriendship},
			Workers: 4,
			TopN:    10,
		},
		Toxicity: ToxicityConfig{
			BaseURL:     "http://localhost:11434/v1",
			Model:       "llama3.1:8b-instruct-q6_K",
			Threshold:   0.5,
			Concurrency: 4,
			Timeout:     60 * time.Second,
		},
		Render: RenderConfig{
			Enabled:    true,
			Width:      1200,
			Height:     1200,
			Iterations: 50,
			Seed:       42,
			Layout:     "force",
			Metrics:    []string{"pagerank", "betweenness"},
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Collector.BaseURL = envOrDefault("MASTODON_API_BASE_URL", c.Collector.BaseURL)
	c.Collector.AccessToken = Secret(envOrDefault("MASTODON_ACCESS_TOKEN", c.Collector.AccessToken.Value()))
	c.Toxicity.BaseURL = envOrDefault("FEDIGRAPH_LLM_BASE_URL", c.Toxicity.BaseURL)
	c.Toxicity.APIKey = Secret(envOrDefault("FEDIGRAPH_LLM_API_KEY", c.Toxicity.APIKey.Value()))
	c.Log.Level = strings.ToLower(envOrDefault("LOG_LEVEL", c.Log.Level))
}

// Write saves the configuration as YAML. Secrets are written redacted.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Analyzes reports whether the named graph is selected for analysis.
func (c *Config) Analyzes(graphName string) bool {
	return contains(c.Analysis.Graphs, graphName)
}

// Prunes reports whether the named graph is selected for pruning.
func (c *Config) Prunes(graphName string) bool {
	return contains(c.Prune.Graphs, graphName)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")
