package algorithms

import (
	"github.com/dd0wney/fedigraph/pkg/graph"
)

// gainSlack absorbs floating point noise when comparing modularity gains
const gainSlack = 1e-12

// levelGraph is the weighted undirected graph one Louvain level works on.
// Self-loop weight is kept apart from the neighbour lists.
type levelGraph struct {
	nbrs     [][]int
	weights  [][]float64
	selfLoop []float64
	degree   []float64 // k_i, self-loops counted twice
	m        float64   // total edge weight
}

func (lg *levelGraph) len() int { return len(lg.nbrs) }

func levelGraphFrom(ig *indexedGraph) *levelGraph {
	n := ig.len()
	lg := &levelGraph{
		nbrs:     make([][]int, n),
		weights:  make([][]float64, n),
		selfLoop: make([]float64, n),
		degree:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		for _, j := range ig.sym[i] {
			lg.nbrs[i] = append(lg.nbrs[i], j)
			lg.weights[i] = append(lg.weights[i], 1)
		}
		lg.degree[i] = float64(len(ig.sym[i]))
		if ig.selfLps[i] {
			lg.selfLoop[i] = 1
			lg.degree[i] += 2
		}
	}
	for _, k := range lg.degree {
		lg.m += k
	}
	lg.m /= 2
	return lg
}

// louvainLevel holds the community bookkeeping of one level
type louvainLevel struct {
	g        *levelGraph
	comm     []int
	tot      []float64 // sum of member degrees
	internal []float64 // twice the internal edge weight

	// scratch space for neighbour community weights
	neighWeight []float64
	neighComms  []int
}

func newLouvainLevel(g *levelGraph) *louvainLevel {
	n := g.len()
	l := &louvainLevel{
		g:           g,
		comm:        make([]int, n),
		tot:         make([]float64, n),
		internal:    make([]float64, n),
		neighWeight: make([]float64, n),
		neighComms:  make([]int, 0, n),
	}
	for i := 0; i < n; i++ {
		l.comm[i] = i
		l.tot[i] = g.degree[i]
		l.internal[i] = 2 * g.selfLoop[i]
	}
	for i := range l.neighWeight {
		l.neighWeight[i] = -1
	}
	return l
}

// gatherNeighbourCommunities fills neighComms in scan order with the
// communities adjacent to node and their link weights.
func (l *louvainLevel) gatherNeighbourCommunities(node int) {
	for _, c := range l.neighComms {
		l.neighWeight[c] = -1
	}
	l.neighComms = l.neighComms[:0]

	own := l.comm[node]
	l.neighWeight[own] = 0
	l.neighComms = append(l.neighComms, own)

	for k, j := range l.g.nbrs[node] {
		c := l.comm[j]
		if l.neighWeight[c] < 0 {
			l.neighWeight[c] = 0
			l.neighComms = append(l.neighComms, c)
		}
		l.neighWeight[c] += l.g.weights[node][k]
	}
}

func (l *louvainLevel) remove(node, c int, linkWeight float64) {
	l.tot[c] -= l.g.degree[node]
	l.internal[c] -= 2*linkWeight + 2*l.g.selfLoop[node]
	l.comm[node] = -1
}

func (l *louvainLevel) insert(node, c int, linkWeight float64) {
	l.tot[c] += l.g.degree[node]
	l.internal[c] += 2*linkWeight + 2*l.g.selfLoop[node]
	l.comm[node] = c
}

// gain is the modularity gain, scaled by m, of inserting an isolated node into c
func (l *louvainLevel) gain(node, c int, linkWeight float64) float64 {
	return linkWeight - l.g.degree[node]*l.tot[c]/(2*l.g.m)
}

// optimize moves nodes between neighbouring communities in index order
// until a full pass makes no move. It reports whether any node moved.
func (l *louvainLevel) optimize() bool {
	movedAny := false
	for {
		moves := 0
		for node := 0; node < l.g.len(); node++ {
			own := l.comm[node]
			l.gatherNeighbourCommunities(node)
			l.remove(node, own, l.neighWeight[own])

			stayGain := l.gain(node, own, l.neighWeight[own])
			best, bestGain := -1, 0.0
			for _, c := range l.neighComms {
				if c == own {
					continue
				}
				g := l.gain(node, c, l.neighWeight[c])
				if best < 0 || g > bestGain+gainSlack || (g >= bestGain-gainSlack && c < best) {
					best, bestGain = c, g
				}
			}

			target := own
			if best >= 0 && bestGain > stayGain+gainSlack {
				target = best
				moves++
			}
			l.insert(node, target, l.neighWeight[target])
		}
		if moves == 0 {
			return movedAny
		}
		movedAny = true
	}
}

// modularity returns Q of the current assignment
func (l *louvainLevel) modularity() float64 {
	m2 := 2 * l.g.m
	q := 0.0
	for c := range l.tot {
		if l.tot[c] == 0 && l.internal[c] == 0 {
			continue
		}
		q += l.internal[c]/m2 - (l.tot[c]/m2)*(l.tot[c]/m2)
	}
	return q
}

// renumber relabels communities 0..k-1 by first appearance in node order
// and returns the node -> label slice and k.
func (l *louvainLevel) renumber() ([]int, int) {
	label := make(map[int]int)
	out := make([]int, len(l.comm))
	for i, c := range l.comm {
		id, ok := label[c]
		if !ok {
			id = len(label)
			label[c] = id
		}
		out[i] = id
	}
	return out, len(label)
}

// aggregate builds the graph whose nodes are the communities of labels
func (lg *levelGraph) aggregate(labels []int, k int) *levelGraph {
	super := &levelGraph{
		nbrs:     make([][]int, k),
		weights:  make([][]float64, k),
		selfLoop: make([]float64, k),
		degree:   make([]float64, k),
		m:        lg.m,
	}
	slot := make([]map[int]int, k)
	for c := range slot {
		slot[c] = make(map[int]int)
	}

	for i := 0; i < lg.len(); i++ {
		ci := labels[i]
		super.degree[ci] += lg.degree[i]
		super.selfLoop[ci] += lg.selfLoop[i]
		for idx, j := range lg.nbrs[i] {
			w := lg.weights[i][idx]
			cj := labels[j]
			if ci == cj {
				// seen from both ends
				super.selfLoop[ci] += w / 2
				continue
			}
			pos, ok := slot[ci][cj]
			if !ok {
				pos = len(super.nbrs[ci])
				slot[ci][cj] = pos
				super.nbrs[ci] = append(super.nbrs[ci], cj)
				super.weights[ci] = append(super.weights[ci], 0)
			}
			super.weights[ci][pos] += w
		}
	}
	return super
}

// DetectCommunities partitions an undirected graph by greedy modularity
// optimization in the Louvain style. Nodes are visited in insertion order
// and each moves to the neighbouring community with the largest gain when
// that gain beats staying; ties go to the lowest community id. Communities
// are then collapsed into super-nodes and the search repeats until a level
// moves nothing. Community ids are 0..k-1 in order of first appearance.
//
// A graph without edges yields singleton communities and modularity 0.
func DetectCommunities(g *graph.Graph) (*CommunityDetectionResult, error) {
	if g.Directed() {
		return nil, ErrDirectedGraph
	}
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}
	ig := newIndexedGraph(g)
	lg := levelGraphFrom(ig)

	assignment := make([]int, ig.len())
	for i := range assignment {
		assignment[i] = i
	}

	levels := 0
	modularity := 0.0
	if lg.m > 0 {
		for {
			level := newLouvainLevel(lg)
			moved := level.optimize()
			labels, k := level.renumber()
			for i, c := range assignment {
				assignment[i] = labels[c]
			}
			modularity = level.modularity()
			if !moved {
				break
			}
			levels++
			lg = lg.aggregate(labels, k)
		}
	}

	return buildCommunityResult(ig, assignment, modularity, levels), nil
}

func buildCommunityResult(ig *indexedGraph, assignment []int, modularity float64, levels int) *CommunityDetectionResult {
	// Final relabel by first appearance in node order
	label := make(map[int]int)
	var communities []*Community
	nodeCommunity := make(map[string]int, ig.len())
	for i, c := range assignment {
		id, ok := label[c]
		if !ok {
			id = len(label)
			label[c] = id
			communities = append(communities, &Community{ID: id})
		}
		nodeCommunity[ig.ids[i]] = id
		communities[id].Nodes = append(communities[id].Nodes, ig.ids[i])
	}

	internalEdges := make([]int, len(communities))
	for i, nbrs := range ig.sym {
		for _, j := range nbrs {
			if j > i && nodeCommunity[ig.ids[i]] == nodeCommunity[ig.ids[j]] {
				internalEdges[nodeCommunity[ig.ids[i]]]++
			}
		}
	}
	for _, c := range communities {
		c.Size = len(c.Nodes)
		if c.Size > 1 {
			c.Density = float64(internalEdges[c.ID]) / float64(c.Size*(c.Size-1)/2)
		}
	}

	return &CommunityDetectionResult{
		Communities:   communities,
		Modularity:    modularity,
		NodeCommunity: nodeCommunity,
		Levels:        levels,
	}
}
