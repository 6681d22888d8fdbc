package algorithms

// Community represents a detected community
type Community struct {
	ID      int      `json:"id"`
	Nodes   []string `json:"nodes"`
	Size    int      `json:"size"`
	Density float64  `json:"density"` // Edge density within community
}

// CommunityDetectionResult contains detected communities
type CommunityDetectionResult struct {
	Communities   []*Community   `json:"communities"`
	Modularity    float64        `json:"modularity"`     // Quality measure of the partitioning
	NodeCommunity map[string]int `json:"node_community"` // Node ID -> Community ID
	Levels        int            `json:"levels"`         // aggregation levels that moved at least one node
}

// CommunityCount returns the number of communities
func (r *CommunityDetectionResult) CommunityCount() int {
	return len(r.Communities)
}
