package normalize

import (
	"github.com/dd0wney/fedigraph/pkg/records"
)

// Post reshapes a raw status. Mentions and tags keep their API order;
// reply and reblog targets are carried over when present.
func Post(raw records.RawStatus) records.Post {
	content := StripMarkup(raw.Content)

	p := records.Post{
		ID:              raw.ID,
		Content:         content,
		CreatedAt:       raw.CreatedAt,
		Username:        raw.Account.Username,
		Mentions:        make([]string, 0, len(raw.Mentions)),
		Tags:            make([]string, 0, len(raw.Tags)),
		ReblogsCount:    raw.ReblogsCount,
		FavouritesCount: raw.FavouritesCount,
		RepliesCount:    raw.RepliesCount,
		Sentiment:       Polarity(content),
	}
	for _, m := range raw.Mentions {
		p.Mentions = append(p.Mentions, m.Username)
	}
	for _, t := range raw.Tags {
		p.Tags = append(p.Tags, t.Name)
	}
	if raw.InReplyToID != nil {
		p.InReplyToID = *raw.InReplyToID
	}
	if raw.Reblog != nil {
		p.ReblogID = raw.Reblog.ID
	}
	return p
}

// User reshapes a raw account and its follow lists.
func User(raw records.RawAccount) records.User {
	u := records.User{
		ID:             raw.ID,
		Username:       raw.Username,
		CreatedAt:      raw.CreatedAt,
		FollowersCount: raw.FollowersCount,
		FollowingCount: raw.FollowingCount,
		StatusesCount:  raw.StatusesCount,
		LastStatusAt:   raw.LastStatusAt,
		Followers:      refs(raw.Followers),
		Following:      refs(raw.Following),
	}
	return u
}

func refs(accounts []records.RawAccount) []records.AccountRef {
	out := make([]records.AccountRef, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, records.AccountRef{ID: a.ID, Username: a.Username})
	}
	return out
}

// Posts reshapes and validates a raw status set.
func Posts(raws []records.RawStatus) ([]records.Post, error) {
	posts := make([]records.Post, 0, len(raws))
	for _, r := range raws {
		posts = append(posts, Post(r))
	}
	if err := records.ValidatePosts(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Users reshapes and validates a raw account set.
func Users(raws []records.RawAccount) ([]records.User, error) {
	users := make([]records.User, 0, len(raws))
	for _, r := range raws {
		users = append(users, User(r))
	}
	if err := records.ValidateUsers(users); err != nil {
		return nil, err
	}
	return users, nil
}
