package algorithms

import (
	"container/heap"
	"sort"
)

// RankedNode represents a node with its rank
type RankedNode struct {
	NodeID string  `json:"node_id"`
	Score  float64 `json:"score"`
}

// rankedNodeHeap implements a min-heap for RankedNode by score.
// We use a min-heap to efficiently find top N elements:
// - Keep at most N elements in the heap
// - The minimum element is at the root
// - When adding a new element, if heap is full and new > min, pop min and push new
// Ties are broken so that the larger node id is the smaller element.
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].NodeID > h[j].NodeID
}
func (h rankedNodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopNodes returns the n highest-scoring nodes, best first, ties broken by
// ascending node id.
// Time complexity: O(m log n) where m = len(scores)
func TopNodes(scores map[string]float64, n int) []RankedNode {
	if n <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, n)
	for nodeID, score := range scores {
		rn := RankedNode{NodeID: nodeID, Score: score}
		if h.Len() < n {
			heap.Push(&h, rn)
		} else if rankedNodeHeap([]RankedNode{h[0], rn}).Less(0, 1) {
			h[0] = rn
			heap.Fix(&h, 0)
		}
	}

	result := []RankedNode(h)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].NodeID < result[j].NodeID
	})
	return result
}
