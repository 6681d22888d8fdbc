package algorithms

import (
	"sort"

	"github.com/dd0wney/fedigraph/pkg/graph"
)

// AverageFriendsResult holds the degree-based "average friends" statistics.
type AverageFriendsResult struct {
	// GlobalAverage is the degree sum divided by the node count
	GlobalAverage float64 `json:"global_average"`
	// LocalAverage is the mean of PerNode
	LocalAverage float64 `json:"local_average"`
	// PerNode is the mean degree of each node's distinct neighbours, 0 when isolated
	PerNode map[string]float64 `json:"per_node"`
}

// AverageFriends computes global and one-hop local average degrees. Degrees
// are total degrees; neighbourhoods ignore edge direction and self-loops.
func AverageFriends(g *graph.Graph) (*AverageFriendsResult, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)
	n := ig.len()

	degreeSum := 0
	for i := 0; i < n; i++ {
		degreeSum += ig.degree(i)
	}

	local := ig.neighbourDegreeMeans()
	localSum := 0.0
	for _, v := range local {
		localSum += v
	}

	return &AverageFriendsResult{
		GlobalAverage: float64(degreeSum) / float64(n),
		LocalAverage:  localSum / float64(n),
		PerNode:       ig.scores(local),
	}, nil
}

func (ig *indexedGraph) neighbourDegreeMeans() []float64 {
	means := make([]float64, ig.len())
	for i, nbrs := range ig.sym {
		if len(nbrs) == 0 {
			continue
		}
		sum := 0
		for _, j := range nbrs {
			sum += ig.degree(j)
		}
		means[i] = float64(sum) / float64(len(nbrs))
	}
	return means
}

// AverageDegreeConnectivity maps each degree k present in g to the mean
// neighbour degree of the nodes with degree k. Isolated nodes contribute 0.
func AverageDegreeConnectivity(g *graph.Graph) (map[int]float64, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)
	means := ig.neighbourDegreeMeans()

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, m := range means {
		k := ig.degree(i)
		sums[k] += m
		counts[k]++
	}

	connectivity := make(map[int]float64, len(sums))
	for k, s := range sums {
		connectivity[k] = s / float64(counts[k])
	}
	return connectivity, nil
}

// DegreeCount is one point of a degree distribution
type DegreeCount struct {
	Degree int `json:"degree"`
	Count  int `json:"count"`
}

// DegreeDistribution returns how many nodes have each degree, sorted by degree.
func DegreeDistribution(g *graph.Graph) ([]DegreeCount, error) {
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	counts := make(map[int]int)
	for _, d := range g.Degrees() {
		counts[d]++
	}

	dist := make([]DegreeCount, 0, len(counts))
	for d, c := range counts {
		dist = append(dist, DegreeCount{Degree: d, Count: c})
	}
	sort.Slice(dist, func(i, j int) bool { return dist[i].Degree < dist[j].Degree })
	return dist, nil
}
