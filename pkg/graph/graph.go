// Package graph holds the in-memory graphs built from collected activity.
//
// A Graph is either directed (information diffusion between posts) or
// undirected (friendship between accounts). Node and edge iteration follow
// insertion order. A Graph is not safe for concurrent mutation; concurrent
// readers are fine once construction and pruning are done.
package graph

// Graph is an adjacency-map graph keyed by string node identifiers
type Graph struct {
	directed  bool
	nodes     map[string]*Node
	order     []string
	out       map[string]*edgeSet // successors, or all neighbours when undirected
	in        map[string]*edgeSet // predecessors, directed only
	edgeCount int
}

// New creates an empty graph
func New(directed bool) *Graph {
	g := &Graph{
		directed: directed,
		nodes:    make(map[string]*Node),
		out:      make(map[string]*edgeSet),
	}
	if directed {
		g.in = make(map[string]*edgeSet)
	}
	return g
}

// NewDirected creates an empty directed graph
func NewDirected() *Graph { return New(true) }

// NewUndirected creates an empty undirected graph
func NewUndirected() *Graph { return New(false) }

// Directed reports whether edges are ordered pairs
func (g *Graph) Directed() bool { return g.directed }

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int { return g.edgeCount }

// Statistics returns node and edge counts
func (g *Graph) Statistics() Statistics {
	return Statistics{
		Directed:  g.directed,
		NodeCount: len(g.order),
		EdgeCount: g.edgeCount,
	}
}

// AddNode inserts a node or merges attribute bundles into an existing one.
// A nil bundle never clears an existing bundle.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrEmptyNodeID
	}
	existing := g.ensureNode(n.ID)
	if n.Post != nil {
		post := *n.Post
		existing.Post = &post
	}
	if n.Account != nil {
		account := *n.Account
		existing.Account = &account
	}
	return nil
}

func (g *Graph) ensureNode(id string) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id}
	g.nodes[id] = n
	g.order = append(g.order, id)
	g.out[id] = newEdgeSet()
	if g.directed {
		g.in[id] = newEdgeSet()
	}
	return n
}

// AddEdge inserts an edge, creating bare endpoint nodes as needed. Adding an
// edge between a pair that is already connected overwrites the existing
// edge's weight and relation.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == "" || e.To == "" {
		return ErrEmptyNodeID
	}
	g.ensureNode(e.From)
	g.ensureNode(e.To)

	if existing, ok := g.out[e.From].get(e.To); ok {
		existing.Weight = e.Weight
		existing.Relation = e.Relation
		return nil
	}

	edge := &Edge{From: e.From, To: e.To, Weight: e.Weight, Relation: e.Relation}
	g.out[e.From].put(e.To, edge)
	if g.directed {
		g.in[e.To].put(e.From, edge)
	} else if e.From != e.To {
		g.out[e.To].put(e.From, edge)
	}
	g.edgeCount++
	return nil
}

// HasNode reports whether id is in the graph
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// HasEdge reports whether from and to are connected. For undirected graphs
// the argument order does not matter.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.Edge(from, to)
	return ok
}

// Edge returns a copy of the edge between from and to
func (g *Graph) Edge(from, to string) (Edge, bool) {
	adj, ok := g.out[from]
	if !ok {
		return Edge{}, false
	}
	e, ok := adj.get(to)
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// NodeIDs returns node identifiers in insertion order
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Nodes returns copies of all nodes in insertion order
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, *g.nodes[id])
	}
	return nodes
}

// Edges returns copies of all edges. Undirected edges are reported once.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edgeCount)
	seen := make(map[*Edge]bool, g.edgeCount)
	for _, id := range g.order {
		adj := g.out[id]
		for _, key := range adj.keys {
			e := adj.edges[key]
			if seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, *e)
		}
	}
	return edges
}

// Successors returns the targets of id's outgoing edges (all neighbours for
// undirected graphs).
func (g *Graph) Successors(id string) []string {
	adj, ok := g.out[id]
	if !ok {
		return nil
	}
	return append([]string(nil), adj.keys...)
}

// Predecessors returns the sources of id's incoming edges (all neighbours for
// undirected graphs).
func (g *Graph) Predecessors(id string) []string {
	if !g.directed {
		return g.Successors(id)
	}
	adj, ok := g.in[id]
	if !ok {
		return nil
	}
	return append([]string(nil), adj.keys...)
}

// Neighbors returns the distinct nodes adjacent to id in either direction
func (g *Graph) Neighbors(id string) []string {
	if !g.directed {
		return g.Successors(id)
	}
	out, ok := g.out[id]
	if !ok {
		return nil
	}
	neighbors := append([]string(nil), out.keys...)
	for _, src := range g.in[id].keys {
		if _, dup := out.get(src); !dup {
			neighbors = append(neighbors, src)
		}
	}
	return neighbors
}

// OutDegree returns the number of outgoing edges (degree when undirected)
func (g *Graph) OutDegree(id string) int {
	if !g.directed {
		return g.Degree(id)
	}
	adj, ok := g.out[id]
	if !ok {
		return 0
	}
	return adj.len()
}

// InDegree returns the number of incoming edges (degree when undirected)
func (g *Graph) InDegree(id string) int {
	if !g.directed {
		return g.Degree(id)
	}
	adj, ok := g.in[id]
	if !ok {
		return 0
	}
	return adj.len()
}

// Degree returns in+out degree for directed graphs and the number of
// incident edge ends for undirected graphs. A self-loop counts twice.
func (g *Graph) Degree(id string) int {
	adj, ok := g.out[id]
	if !ok {
		return 0
	}
	if g.directed {
		return adj.len() + g.in[id].len()
	}
	degree := adj.len()
	if _, loop := adj.get(id); loop {
		degree++
	}
	return degree
}

// Degrees returns the degree of every node
func (g *Graph) Degrees() map[string]int {
	degrees := make(map[string]int, len(g.order))
	for _, id := range g.order {
		degrees[id] = g.Degree(id)
	}
	return degrees
}

// RemoveEdge deletes the edge between from and to
func (g *Graph) RemoveEdge(from, to string) error {
	adj, ok := g.out[from]
	if !ok || !adj.remove(to) {
		return ErrEdgeNotFound
	}
	if g.directed {
		g.in[to].remove(from)
	} else if from != to {
		g.out[to].remove(from)
	}
	g.edgeCount--
	return nil
}

// RemoveNode deletes a node and every edge incident to it
func (g *Graph) RemoveNode(id string) error {
	if !g.HasNode(id) {
		return ErrNodeNotFound
	}
	g.detach(id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveNodes deletes every listed node that exists and returns how many
// were removed.
func (g *Graph) RemoveNodes(ids []string) int {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if g.HasNode(id) && !doomed[id] {
			doomed[id] = true
			g.detach(id)
		}
	}
	if len(doomed) == 0 {
		return 0
	}
	kept := g.order[:0]
	for _, id := range g.order {
		if !doomed[id] {
			kept = append(kept, id)
		}
	}
	g.order = kept
	return len(doomed)
}

// detach removes id's incident edges and its maps, leaving g.order untouched
func (g *Graph) detach(id string) {
	out := g.out[id]
	for _, to := range out.keys {
		if to != id {
			if g.directed {
				g.in[to].remove(id)
			} else {
				g.out[to].remove(id)
			}
		}
		g.edgeCount--
	}
	if g.directed {
		for _, from := range g.in[id].keys {
			if from != id {
				g.out[from].remove(id)
				g.edgeCount--
			}
		}
		delete(g.in, id)
	}
	delete(g.out, id)
	delete(g.nodes, id)
}

// ToUndirected returns an undirected copy of g. Opposite directed edges
// collapse into one edge carrying the attributes of the later one.
func (g *Graph) ToUndirected() *Graph {
	u := NewUndirected()
	for _, id := range g.order {
		n := g.nodes[id]
		u.ensureNode(id)
		u.nodes[id].Post = n.Post
		u.nodes[id].Account = n.Account
	}
	for _, e := range g.Edges() {
		_ = u.AddEdge(e)
	}
	return u
}
