package collector

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/records"
)

// Endpoint labels.
const (
	endpointTagTimeline = "timelines/tag"
	endpointLookup      = "accounts/lookup"
	endpointAccount     = "accounts"
	endpointFollowers   = "accounts/followers"
	endpointFollowing   = "accounts/following"
)

// CollectPosts walks each hashtag timeline backwards with max_id
// pagination until the tag's share of MinPosts is reached or a page comes
// back empty. A tag that keeps failing is logged and skipped. The result is
// truncated to MinPosts.
func (c *Client) CollectPosts(ctx context.Context) ([]records.RawStatus, error) {
	if len(c.opts.Hashtags) == 0 {
		return nil, nil
	}
	perTag := c.opts.MinPosts / len(c.opts.Hashtags)

	var posts []records.RawStatus
	for _, tag := range c.opts.Hashtags {
		log := c.logger.With(logging.Hashtag(tag))
		tagPosts, err := c.collectTag(ctx, tag, perTag)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			log.Warn("hashtag collection stopped", logging.Count(len(tagPosts)), logging.Error(err))
		} else {
			log.Info("hashtag collected", logging.Count(len(tagPosts)))
		}
		posts = append(posts, tagPosts...)
	}

	if len(posts) > c.opts.MinPosts {
		posts = posts[:c.opts.MinPosts]
	}
	return posts, nil
}

func (c *Client) collectTag(ctx context.Context, tag string, want int) ([]records.RawStatus, error) {
	var posts []records.RawStatus
	maxID := ""
	for len(posts) < want {
		q := url.Values{"limit": {strconv.Itoa(c.opts.PageLimit)}}
		if maxID != "" {
			q.Set("max_id", maxID)
		}

		var page []records.RawStatus
		if err := c.getJSON(ctx, endpointTagTimeline, "/api/v1/timelines/tag/"+url.PathEscape(tag), q, &page); err != nil {
			return posts, err
		}
		if len(page) == 0 {
			break
		}
		posts = append(posts, page...)
		maxID = page[len(page)-1].ID
	}
	return posts, nil
}

// CollectUsers gathers account ids from the follower and following lists
// of the seed accounts until MinUsers ids are known, then fetches each of
// the first MinUsers accounts with its own follow lists. Failed seeds and
// accounts are logged and skipped.
func (c *Client) CollectUsers(ctx context.Context) ([]records.RawAccount, error) {
	var ids []string
	seen := make(map[string]bool)
	add := func(accounts []records.RawAccount) {
		for _, a := range accounts {
			if !seen[a.ID] {
				seen[a.ID] = true
				ids = append(ids, a.ID)
			}
		}
	}

	for _, seed := range c.opts.SeedUsers {
		log := c.logger.With(logging.String("seed", seed))

		var acct records.RawAccount
		err := c.getJSON(ctx, endpointLookup, "/api/v1/accounts/lookup", url.Values{"acct": {seed}}, &acct)
		if err == nil {
			var followers, following []records.RawAccount
			followers, following, err = c.followLists(ctx, acct.ID)
			add(followers)
			add(following)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			log.Warn("seed account skipped", logging.Error(err))
			continue
		}
		log.Debug("seed account expanded", logging.Count(len(ids)))
		if len(ids) >= c.opts.MinUsers {
			break
		}
	}

	if len(ids) > c.opts.MinUsers {
		ids = ids[:c.opts.MinUsers]
	}

	users := make([]records.RawAccount, 0, len(ids))
	for _, id := range ids {
		u, err := c.fetchUser(ctx, id)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			c.logger.Warn("account skipped", logging.NodeID(id), logging.Error(err))
			continue
		}
		users = append(users, u)
	}
	c.logger.Info("accounts collected", logging.Count(len(users)))
	return users, nil
}

func (c *Client) fetchUser(ctx context.Context, id string) (records.RawAccount, error) {
	var acct records.RawAccount
	if err := c.getJSON(ctx, endpointAccount, "/api/v1/accounts/"+url.PathEscape(id), nil, &acct); err != nil {
		return acct, err
	}
	followers, following, err := c.followLists(ctx, id)
	if err != nil {
		return acct, err
	}
	acct.Followers = followers
	acct.Following = following
	return acct, nil
}

// followLists fetches the first page of an account's followers and following.
func (c *Client) followLists(ctx context.Context, id string) (followers, following []records.RawAccount, err error) {
	q := url.Values{"limit": {strconv.Itoa(c.opts.PageLimit)}}
	base := "/api/v1/accounts/" + url.PathEscape(id)
	if err = c.getJSON(ctx, endpointFollowers, base+"/followers", q, &followers); err != nil {
		return nil, nil, err
	}
	if err = c.getJSON(ctx, endpointFollowing, base+"/following", q, &following); err != nil {
		return nil, nil, err
	}
	return followers, following, nil
}
