// Package network builds the diffusion and friendship graphs from record sets
// and prunes them under threshold policies.
package network

import (
	"github.com/dd0wney/fedigraph/pkg/graph"
	"github.com/dd0wney/fedigraph/pkg/records"
)

// Diffusion edge weights
const (
	WeightMention = 1
	WeightReply   = 2
	WeightReblog  = 3
)

// BuildDiffusionGraph returns a directed graph with one node per post.
// Edges are inserted per post in the order mentions, reply, reblog, so a
// reply or reblog edge overwrites a mention edge to the same target.
// Targets that are not post ids become bare nodes.
//
// The whole call fails with a *records.MalformedRecordError if any post is
// invalid.
func BuildDiffusionGraph(posts []records.Post) (*graph.Graph, error) {
	if err := records.ValidatePosts(posts); err != nil {
		return nil, err
	}

	g := graph.NewDirected()
	for i := range posts {
		p := &posts[i]
		if err := g.AddNode(graph.Node{
			ID: p.ID,
			Post: &graph.PostInfo{
				Content:   p.Content,
				Author:    p.Username,
				CreatedAt: p.CreatedAt,
				Sentiment: p.Sentiment,
			},
		}); err != nil {
			return nil, err
		}

		for _, mention := range p.Mentions {
			if err := g.AddEdge(graph.Edge{From: p.ID, To: mention, Weight: WeightMention, Relation: graph.RelationMention}); err != nil {
				return nil, err
			}
		}
		if p.InReplyToID != "" {
			if err := g.AddEdge(graph.Edge{From: p.ID, To: p.InReplyToID, Weight: WeightReply, Relation: graph.RelationReply}); err != nil {
				return nil, err
			}
		}
		if p.ReblogID != "" {
			if err := g.AddEdge(graph.Edge{From: p.ID, To: p.ReblogID, Weight: WeightReblog, Relation: graph.RelationReblog}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// BuildFriendshipGraph returns an undirected graph with one node per user
// and an edge for every follower and following relation. A pair related
// both ways keeps the tag of the last insertion.
func BuildFriendshipGraph(users []records.User) (*graph.Graph, error) {
	if err := records.ValidateUsers(users); err != nil {
		return nil, err
	}

	g := graph.NewUndirected()
	for i := range users {
		u := &users[i]
		if err := g.AddNode(graph.Node{
			ID: u.ID,
			Account: &graph.AccountInfo{
				Username:       u.Username,
				FollowersCount: u.FollowersCount,
				FollowingCount: u.FollowingCount,
			},
		}); err != nil {
			return nil, err
		}

		for _, f := range u.Followers {
			if err := g.AddEdge(graph.Edge{From: u.ID, To: f.ID, Weight: 1, Relation: graph.RelationFollower}); err != nil {
				return nil, err
			}
		}
		for _, f := range u.Following {
			if err := g.AddEdge(graph.Edge{From: u.ID, To: f.ID, Weight: 1, Relation: graph.RelationFollowing}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
