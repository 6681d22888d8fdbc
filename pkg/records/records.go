// Package records defines the post and user schemas consumed by the graph
// builders, the raw schemas produced by the collector, and their on-disk codecs.
package records

import "time"

// Post is a normalized status.
type Post struct {
	ID              string    `json:"id" validate:"required"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	Username        string    `json:"username" validate:"required"`
	Mentions        []string  `json:"mentions" validate:"dive,required"`
	Tags            []string  `json:"tags"`
	ReblogsCount    int       `json:"reblogs_count" validate:"gte=0"`
	FavouritesCount int       `json:"favourites_count" validate:"gte=0"`
	RepliesCount    int       `json:"replies_count" validate:"gte=0"`
	Sentiment       float64   `json:"sentiment" validate:"gte=-1,lte=1"`
	InReplyToID     string    `json:"in_reply_to_id,omitempty"`
	ReblogID        string    `json:"reblog_id,omitempty"`
}

// AccountRef identifies an account in a follower or following list
type AccountRef struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username"`
}

// User is a normalized account with its follow relations.
type User struct {
	ID             string       `json:"id" validate:"required"`
	Username       string       `json:"username" validate:"required"`
	CreatedAt      time.Time    `json:"created_at"`
	FollowersCount int          `json:"followers_count" validate:"gte=0"`
	FollowingCount int          `json:"following_count" validate:"gte=0"`
	StatusesCount  int          `json:"statuses_count" validate:"gte=0"`
	LastStatusAt   *string      `json:"last_status_at"`
	Followers      []AccountRef `json:"followers" validate:"dive"`
	Following      []AccountRef `json:"following" validate:"dive"`
}

// RawAccount is an account as returned by the remote instance API.
// Followers and Following are only populated by the user collector.
type RawAccount struct {
	ID             string       `json:"id"`
	Username       string       `json:"username"`
	Acct           string       `json:"acct,omitempty"`
	DisplayName    string       `json:"display_name,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	FollowersCount int          `json:"followers_count"`
	FollowingCount int          `json:"following_count"`
	StatusesCount  int          `json:"statuses_count"`
	LastStatusAt   *string      `json:"last_status_at"`
	Followers      []RawAccount `json:"followers,omitempty"`
	Following      []RawAccount `json:"following,omitempty"`
}

type RawMention struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct,omitempty"`
	URL      string `json:"url,omitempty"`
}

type RawTag struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// RawStatus is a status as returned by the hashtag timeline endpoint.
type RawStatus struct {
	ID              string       `json:"id"`
	CreatedAt       time.Time    `json:"created_at"`
	Content         string       `json:"content"`
	Account         RawAccount   `json:"account"`
	Mentions        []RawMention `json:"mentions"`
	Tags            []RawTag     `json:"tags"`
	ReblogsCount    int          `json:"reblogs_count"`
	FavouritesCount int          `json:"favourites_count"`
	RepliesCount    int          `json:"replies_count"`
	InReplyToID     *string      `json:"in_reply_to_id"`
	Reblog          *RawStatus   `json:"reblog"`
}
