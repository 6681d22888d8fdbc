package graph

// edgeSet is an insertion-ordered adjacency map. Keeping insertion order
// makes every traversal over the graph reproducible.
type edgeSet struct {
	keys  []string
	edges map[string]*Edge
}

func newEdgeSet() *edgeSet {
	return &edgeSet{edges: make(map[string]*Edge)}
}

// put stores e under key; an existing key keeps its position
func (s *edgeSet) put(key string, e *Edge) {
	if _, ok := s.edges[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.edges[key] = e
}

func (s *edgeSet) get(key string) (*Edge, bool) {
	e, ok := s.edges[key]
	return e, ok
}

func (s *edgeSet) remove(key string) bool {
	if _, ok := s.edges[key]; !ok {
		return false
	}
	delete(s.edges, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

func (s *edgeSet) len() int {
	return len(s.keys)
}
