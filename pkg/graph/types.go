package graph

import "time"

// Relation names the kind of interaction an edge represents
type Relation string

const (
	RelationMention   Relation = "mention"
	RelationReply     Relation = "reply"
	RelationReblog    Relation = "reblog"
	RelationFollower  Relation = "follower"
	RelationFollowing Relation = "following"
)

// PostInfo is the attribute bundle carried by diffusion-graph nodes that
// correspond to a collected post.
type PostInfo struct {
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Sentiment float64   `json:"sentiment"`
}

// AccountInfo is the attribute bundle carried by friendship-graph nodes.
type AccountInfo struct {
	Username       string `json:"username"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
}

// Node is a vertex keyed by an opaque identifier. Nodes created implicitly as
// edge targets carry neither bundle.
type Node struct {
	ID      string       `json:"id"`
	Post    *PostInfo    `json:"post,omitempty"`
	Account *AccountInfo `json:"account,omitempty"`
}

// HasContent reports whether the node carries post text
func (n *Node) HasContent() bool {
	return n != nil && n.Post != nil
}

// Edge connects two nodes. For undirected graphs From/To keep the orientation
// of the first insertion.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Weight   int      `json:"weight"`
	Relation Relation `json:"relation"`
}

// Statistics summarises a graph
type Statistics struct {
	Directed  bool `json:"directed"`
	NodeCount int  `json:"node_count"`
	EdgeCount int  `json:"edge_count"`
}
