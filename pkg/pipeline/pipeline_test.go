package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/fedigraph/pkg/analysis"
	"github.com/dd0wney/fedigraph/pkg/artifacts"
	"github.com/dd0wney/fedigraph/pkg/config"
	"github.com/dd0wney/fedigraph/pkg/records"
	"github.com/dd0wney/fedigraph/pkg/report"
	"github.com/dd0wney/fedigraph/pkg/toxicity"
)

type keywordScorer struct{}

func (keywordScorer) Score(_ context.Context, text string) (float64, error) {
	if strings.Contains(text, "terrible") {
		return 0.9, nil
	}
	return 0.1, nil
}

type memPublisher struct {
	mu    sync.Mutex
	files []string
}

func (m *memPublisher) Publish(_ context.Context, dir *artifacts.Dir, runID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = dir.Files()
	return "mem://runs/" + runID + "/", nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Data = config.DataConfig{
		RawPosts:       filepath.Join(root, "raw", "keyword_posts.json"),
		RawUsers:       filepath.Join(root, "raw", "user_data.json"),
		ProcessedPosts: filepath.Join(root, "processed", "processed_posts.json"),
		ProcessedUsers: filepath.Join(root, "processed", "processed_users.json"),
	}
	cfg.Output.Dir = filepath.Join(root, "output")
	cfg.Analysis.Graphs = []string{config.GraphDiffusion, config.GraphFriendship}
	cfg.Prune.Graphs = []string{config.GraphFriendship}
	cfg.Render.Width = 200
	cfg.Render.Height = 200
	cfg.Render.Iterations = 5
	cfg.Collector.RequestsPerSecond = 1000
	cfg.Collector.ErrorPause = time.Millisecond
	return cfg
}

func ptr(s string) *string { return &s }

func rawFixtures() ([]records.RawStatus, []records.RawAccount) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	alice := records.RawAccount{ID: "a1", Username: "alice", CreatedAt: at}
	bob := records.RawAccount{ID: "b1", Username: "bob", CreatedAt: at}
	carol := records.RawAccount{ID: "c1", Username: "carol", CreatedAt: at}

	statuses := []records.RawStatus{
		{ID: "1", CreatedAt: at, Content: "<p>I love this @bob</p>", Account: alice,
			Mentions: []records.RawMention{{ID: "b1", Username: "bob"}}},
		{ID: "2", CreatedAt: at, Content: "<p>this is terrible</p>", Account: bob, InReplyToID: ptr("1")},
		{ID: "3", CreatedAt: at, Content: "", Account: carol, Reblog: &records.RawStatus{ID: "1", Account: alice}},
	}

	a, b, c := alice, bob, carol
	a.Followers = []records.RawAccount{bob, carol}
	a.Following = []records.RawAccount{bob}
	b.Followers = []records.RawAccount{alice}
	b.Following = []records.RawAccount{carol}
	c.Followers = []records.RawAccount{alice, bob}
	return statuses, []records.RawAccount{a, b, c}
}

func writeRaw(t *testing.T, cfg *config.Config) {
	t.Helper()
	statuses, accounts := rawFixtures()
	require.NoError(t, records.Save(cfg.Data.RawPosts, statuses))
	require.NoError(t, records.Save(cfg.Data.RawUsers, accounts))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Prune.MinDegree = 0
	_, err = New(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	p, err := New(config.Default(), nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, p.RunID())
	assert.NotNil(t, p.Metrics())

	p, err = New(config.Default(), nil, nil, WithRunID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", p.RunID())
}

func TestProcess(t *testing.T) {
	cfg := testConfig(t)
	writeRaw(t, cfg)

	p, err := New(cfg, nil, nil)
	require.NoError(t, err)
	stats, err := p.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ProcessStats{Posts: 3, Users: 3}, stats)

	posts, err := records.Load[records.Post](cfg.Data.ProcessedPosts)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "I love this @bob", posts[0].Content)
	assert.Equal(t, []string{"bob"}, posts[0].Mentions)
	assert.Equal(t, "1", posts[1].InReplyToID)
	assert.Equal(t, "1", posts[2].ReblogID)

	users, err := records.Load[records.User](cfg.Data.ProcessedUsers)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Len(t, users[0].Followers, 2)
}

func TestProcessMissingRaw(t *testing.T) {
	cfg := testConfig(t)
	p, err := New(cfg, nil, nil)
	require.NoError(t, err)
	_, err = p.Process(context.Background())
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	cfg := testConfig(t)
	cfg.Toxicity.Enabled = true
	writeRaw(t, cfg)

	pub := &memPublisher{}
	p, err := New(cfg, nil, nil, WithRunID("run-1"), WithScorer(keywordScorer{}), WithPublisher(pub))
	require.NoError(t, err)
	_, err = p.Process(context.Background())
	require.NoError(t, err)

	rep, err := p.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, 3, rep.PostCount)
	assert.Equal(t, 3, rep.UserCount)
	assert.Equal(t, "mem://runs/run-1/", rep.Published)
	require.Len(t, rep.Graphs, 2)

	diffusion := rep.Graph(config.GraphDiffusion)
	require.NotNil(t, diffusion)
	assert.True(t, diffusion.Stats.Directed)
	assert.Equal(t, 4, diffusion.Stats.NodeCount) // three posts and the mentioned account
	assert.Equal(t, 3, diffusion.Stats.EdgeCount)
	require.NotNil(t, diffusion.Toxicity)
	assert.Equal(t, 3, diffusion.Toxicity.Candidates)
	assert.Equal(t, 1, diffusion.Toxicity.Toxic)
	require.NotNil(t, diffusion.Partition)
	assert.True(t, diffusion.Partition.Projected)

	friendship := rep.Graph(config.GraphFriendship)
	require.NotNil(t, friendship)
	require.NotNil(t, friendship.Prune)
	assert.Equal(t, 0, friendship.Prune.NodesRemoved)
	assert.Equal(t, 3, friendship.Stats.NodeCount)
	assert.Equal(t, 3, friendship.Stats.EdgeCount)
	clustering, ok := friendship.Metrics.Scalar(analysis.MeasureClustering)
	require.True(t, ok)
	assert.InDelta(t, 1.0, clustering, 1e-9)
	assert.True(t, friendship.Partition.Defined)
	assert.Len(t, friendship.Top[analysis.MeasurePageRank], 3)

	dir := filepath.Join(cfg.Output.Dir, "run-1")
	for _, name := range []string{
		report.FileName,
		MetricsFile,
		ToxicityFile,
		"friendship_pagerank_visualization.svg",
		"friendship_pagerank_visualization.json",
		"friendship_betweenness_visualization.svg",
		"friendship_degree_distribution.svg",
		"diffusion_pagerank_visualization.svg",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, rep.Artifacts, name)
		assert.Contains(t, pub.files, name)
	}

	var annotations map[string]toxicity.Annotation
	data, err := os.ReadFile(filepath.Join(dir, ToxicityFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &annotations))
	assert.True(t, annotations["2"].Toxic)
	assert.False(t, annotations["1"].Toxic)

	saved, err := report.Load(filepath.Join(dir, report.FileName))
	require.NoError(t, err)
	assert.Equal(t, "mem://runs/run-1/", saved.Published)

	metricsText, err := os.ReadFile(filepath.Join(dir, MetricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), `fedigraph_graph_nodes{graph="friendship"} 3`)
}

func TestAnalyzeEmptyRecords(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, records.Save(cfg.Data.ProcessedPosts, []records.Post{}))
	require.NoError(t, records.Save(cfg.Data.ProcessedUsers, []records.User{}))

	p, err := New(cfg, nil, nil, WithRunID("empty"))
	require.NoError(t, err)
	rep, err := p.Analyze(context.Background())
	require.NoError(t, err)

	friendship := rep.Graph(config.GraphFriendship)
	require.NotNil(t, friendship)
	assert.Equal(t, 0, friendship.Stats.NodeCount)
	assert.Len(t, friendship.Metrics.Undefined(), 9)
	assert.False(t, friendship.Partition.Defined)
	assert.NotEmpty(t, rep.Warnings)
	assert.Empty(t, rep.Published)
	assert.NoFileExists(t, filepath.Join(cfg.Output.Dir, "empty", "friendship_pagerank_visualization.svg"))
}

func TestAnalyzeMalformedRecords(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, records.Save(cfg.Data.ProcessedPosts, []records.Post{{ID: "1"}}))
	require.NoError(t, records.Save(cfg.Data.ProcessedUsers, []records.User{}))

	p, err := New(cfg, nil, nil)
	require.NoError(t, err)
	_, err = p.Analyze(context.Background())
	assert.ErrorIs(t, err, records.ErrMalformedRecord)
}

func TestAnalyzeCancelled(t *testing.T) {
	cfg := testConfig(t)
	writeRaw(t, cfg)
	p, err := New(cfg, nil, nil)
	require.NoError(t, err)
	_, err = p.Process(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Analyze(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollect(t *testing.T) {
	statuses, accounts := rawFixtures()
	byID := map[string]records.RawAccount{}
	for _, a := range accounts {
		byID[a.ID] = a
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/timelines/tag/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("max_id") != "" {
			_ = json.NewEncoder(w).Encode([]records.RawStatus{})
			return
		}
		_ = json.NewEncoder(w).Encode(statuses)
	})
	mux.HandleFunc("/api/v1/accounts/lookup", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(byID["a1"])
	})
	mux.HandleFunc("/api/v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/accounts/"), "/")
		acct, ok := byID[parts[0]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch {
		case len(parts) == 1:
			acct.Followers, acct.Following = nil, nil
			_ = json.NewEncoder(w).Encode(acct)
		case parts[1] == "followers":
			_ = json.NewEncoder(w).Encode(acct.Followers)
		default:
			_ = json.NewEncoder(w).Encode(acct.Following)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Collector.BaseURL = srv.URL
	cfg.Collector.Hashtags = []string{"fediverse"}
	cfg.Collector.SeedUsers = []string{"alice"}
	cfg.Collector.MinPosts = 3
	cfg.Collector.MinUsers = 2
	cfg.Data.Snapshot = true

	p, err := New(cfg, nil, nil)
	require.NoError(t, err)
	stats, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CollectStats{Posts: 3, Users: 2}, stats)

	posts, err := records.Load[records.RawStatus](cfg.Data.RawPosts)
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	snap, err := records.Load[records.RawAccount](snapshotPath(cfg.Data.RawUsers))
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "b1", snap[0].ID)
	assert.Len(t, snap[0].Followers, 1)
}

func TestSnapshotPath(t *testing.T) {
	assert.Equal(t, "data/raw/user_data.jsonl.sz", snapshotPath("data/raw/user_data.json"))
	assert.Equal(t, "posts.jsonl.sz", snapshotPath("posts"))
}
