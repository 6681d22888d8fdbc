package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/dd0wney/fedigraph/pkg/collector"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/records"
)

// CollectStats counts the raw records a collection wrote.
type CollectStats struct {
	Posts int
	Users int
}

// Collect fetches raw posts and users from the configured instance and
// writes them to the raw data files.
func (p *Pipeline) Collect(ctx context.Context) (CollectStats, error) {
	var stats CollectStats
	client, err := collector.New(collector.OptionsFromConfig(p.cfg.Collector), p.logger, p.metrics)
	if err != nil {
		return stats, err
	}

	timer := logging.StartTimer(p.logger, "collection finished", logging.Operation("collect"))

	posts, err := client.CollectPosts(ctx)
	if err != nil {
		timer.EndError(err)
		return stats, fmt.Errorf("collect posts: %w", err)
	}
	if err := saveRaw(p.cfg.Data.RawPosts, p.cfg.Data.Snapshot, posts); err != nil {
		timer.EndError(err)
		return stats, err
	}
	stats.Posts = len(posts)

	users, err := client.CollectUsers(ctx)
	if err != nil {
		timer.EndError(err)
		return stats, fmt.Errorf("collect users: %w", err)
	}
	if err := saveRaw(p.cfg.Data.RawUsers, p.cfg.Data.Snapshot, users); err != nil {
		timer.EndError(err)
		return stats, err
	}
	stats.Users = len(users)

	timer.End()
	return stats, nil
}

// saveRaw writes a raw record file and, when snapshots are on, a
// snappy-compressed JSONL copy next to it.
func saveRaw[T any](path string, snapshot bool, recs []T) error {
	if err := records.Save(path, recs); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if snapshot {
		snap := snapshotPath(path)
		if err := records.Save(snap, recs); err != nil {
			return fmt.Errorf("save snapshot %s: %w", snap, err)
		}
	}
	return nil
}

func snapshotPath(path string) string {
	return strings.TrimSuffix(path, records.ExtJSON) + records.ExtJSONLSnappy
}
