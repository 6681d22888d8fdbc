package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/normalize"
	"github.com/dd0wney/fedigraph/pkg/records"
)

// ProcessStats counts the normalized records written by Process.
type ProcessStats struct {
	Posts int
	Users int
}

// Process reads the raw record files, normalizes them and writes the
// processed record files.
func (p *Pipeline) Process(ctx context.Context) (ProcessStats, error) {
	var stats ProcessStats
	timer := logging.StartTimer(p.logger, "processing finished", logging.Operation("process"))

	rawPosts, err := records.Load[records.RawStatus](p.cfg.Data.RawPosts)
	if err != nil {
		timer.EndError(err)
		return stats, fmt.Errorf("load raw posts: %w", err)
	}
	p.metrics.RecordRecordsLoaded("raw_posts", len(rawPosts))

	posts, err := normalize.Posts(rawPosts)
	if err != nil {
		p.recordMalformed("posts", err)
		timer.EndError(err)
		return stats, err
	}
	if err := records.SaveJSON(p.cfg.Data.ProcessedPosts, posts, true); err != nil {
		timer.EndError(err)
		return stats, fmt.Errorf("save processed posts: %w", err)
	}
	stats.Posts = len(posts)

	if err := ctx.Err(); err != nil {
		timer.EndError(err)
		return stats, err
	}

	rawUsers, err := records.Load[records.RawAccount](p.cfg.Data.RawUsers)
	if err != nil {
		timer.EndError(err)
		return stats, fmt.Errorf("load raw users: %w", err)
	}
	p.metrics.RecordRecordsLoaded("raw_users", len(rawUsers))

	users, err := normalize.Users(rawUsers)
	if err != nil {
		p.recordMalformed("users", err)
		timer.EndError(err)
		return stats, err
	}
	if err := records.SaveJSON(p.cfg.Data.ProcessedUsers, users, true); err != nil {
		timer.EndError(err)
		return stats, fmt.Errorf("save processed users: %w", err)
	}
	stats.Users = len(users)

	timer.End()
	return stats, nil
}

func (p *Pipeline) recordMalformed(kind string, err error) {
	if errors.Is(err, records.ErrMalformedRecord) {
		p.metrics.RecordMalformed(kind)
	}
}
