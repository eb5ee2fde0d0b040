package kgx

import "sort"

// Graph accumulates nodes and edges in insertion order. Nodes are keyed by
// id: the first non-empty name wins and categories are merged. Edges are
// unique on (subject, predicate, object, primary knowledge source).
type Graph struct {
	ID string

	nodes     []*Node
	nodeIndex map[string]*Node
	edges     []Edge
	edgeIndex map[edgeKey]struct{}
}

// NewGraph returns an empty graph.
func NewGraph(id string) *Graph {
	return &Graph{
		ID:        id,
		nodeIndex: make(map[string]*Node),
		edgeIndex: make(map[edgeKey]struct{}),
	}
}

// AddNode inserts n or merges it into the node with the same id.
func (g *Graph) AddNode(n Node) {
	if n.ID == "" {
		return
	}
	cur, ok := g.nodeIndex[n.ID]
	if !ok {
		cp := n
		cp.Category = appendUnique(nil, n.Category...)
		cp.EquivalentIdentifiers = appendUnique(nil, n.EquivalentIdentifiers...)
		if len(cp.Category) == 0 {
			cp.Category = []string{CategoryNamedThing}
		}
		g.nodes = append(g.nodes, &cp)
		g.nodeIndex[n.ID] = &cp
		return
	}
	if cur.Name == "" {
		cur.Name = n.Name
	}
	if cur.NCBITaxon == "" {
		cur.NCBITaxon = n.NCBITaxon
	}
	if cur.Description == "" {
		cur.Description = n.Description
	}
	if cur.InformationContent == nil {
		cur.InformationContent = n.InformationContent
	}
	cur.Category = appendUnique(cur.Category, n.Category...)
	cur.EquivalentIdentifiers = appendUnique(cur.EquivalentIdentifiers, n.EquivalentIdentifiers...)
}

// AddEdge inserts e unless an identical edge exists. It reports whether e was added.
func (g *Graph) AddEdge(e Edge) bool {
	if e.Subject == "" || e.Object == "" || e.Predicate == "" {
		return false
	}
	k := e.key()
	if _, ok := g.edgeIndex[k]; ok {
		return false
	}
	g.edgeIndex[k] = struct{}{}
	if e.KnowledgeLevel == "" {
		e.KnowledgeLevel = NotProvided
	}
	if e.AgentType == "" {
		e.AgentType = NotProvided
	}
	g.edges = append(g.edges, e)
	return true
}

// Merge folds other into g.
func (g *Graph) Merge(other *Graph) {
	for _, n := range other.nodes {
		g.AddNode(*n)
	}
	for _, e := range other.edges {
		g.AddEdge(e)
	}
}

// Node returns the node with id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Summary counts a graph's contents.
type Summary struct {
	GraphID     string         `json:"graph_id"`
	NodeCount   int            `json:"node_count"`
	EdgeCount   int            `json:"edge_count"`
	Categories  map[string]int `json:"node_categories"`
	Predicates  map[string]int `json:"edge_predicates"`
	Sources     map[string]int `json:"primary_knowledge_sources"`
	DanglingIDs []string       `json:"dangling_edge_ids,omitempty"`
}

// Summarize reports node counts per category, edge counts per predicate
// and source, and edge endpoints that have no node.
func (g *Graph) Summarize() Summary {
	s := Summary{
		GraphID:    g.ID,
		NodeCount:  len(g.nodes),
		EdgeCount:  len(g.edges),
		Categories: make(map[string]int),
		Predicates: make(map[string]int),
		Sources:    make(map[string]int),
	}
	for _, n := range g.nodes {
		for _, c := range n.Category {
			s.Categories[c]++
		}
	}
	dangling := make(map[string]struct{})
	for _, e := range g.edges {
		s.Predicates[e.Predicate]++
		s.Sources[e.PrimaryKnowledgeSource]++
		for _, id := range []string{e.Subject, e.Object} {
			if _, ok := g.nodeIndex[id]; !ok {
				dangling[id] = struct{}{}
			}
		}
	}
	for id := range dangling {
		s.DanglingIDs = append(s.DanglingIDs, id)
	}
	sort.Strings(s.DanglingIDs)
	return s
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
