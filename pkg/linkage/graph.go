package linkage

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
)

// Node is one distinct identifying value
type Node struct {
	ID      string   `json:"id"`       // normalized value string
	FieldID string   `json:"field_id"` // first field the value was seen under
	Fields  []string `json:"fields"`   // every field the value was seen under, first-seen order
	Index   int      `json:"index"`    // insertion order, also the gonum node id
}

// CrossField reports whether the value appeared under more than one field
func (n Node) CrossField() bool {
	return len(n.Fields) > 1
}

// Edge is an unordered co-occurrence between two distinct values. From is
// always the endpoint inserted first.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"` // number of records the pair was observed in
}

type edgeKey struct {
	lo, hi int
}

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// Graph is a simple undirected graph keyed by value string. It is mutated
// only while being built and is read-only afterwards.
type Graph struct {
	nodes   []Node
	index   map[string]int
	edges   []Edge
	edgeIdx map[edgeKey]int
	adj     [][]int
	g       *simple.UndirectedGraph
	rows    int
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes:   []Node{},
		index:   make(map[string]int),
		edges:   []Edge{},
		edgeIdx: make(map[edgeKey]int),
		adj:     [][]int{},
		g:       simple.NewUndirectedGraph(),
	}
}

// ensureNode returns the node index for value, creating the node on first sight
func (g *Graph) ensureNode(value, fieldID string) int {
	if i, exists := g.index[value]; exists {
		node := &g.nodes[i]
		for _, f := range node.Fields {
			if f == fieldID {
				return i
			}
		}
		node.Fields = append(node.Fields, fieldID)
		return i
	}

	i := len(g.nodes)
	g.nodes = append(g.nodes, Node{
		ID:      value,
		FieldID: fieldID,
		Fields:  []string{fieldID},
		Index:   i,
	})
	g.index[value] = i
	g.adj = append(g.adj, nil)
	g.g.AddNode(simple.Node(int64(i)))
	return i
}

// addEdge inserts an undirected edge between two existing values. Self pairs
// are ignored and repeated pairs only bump the edge weight. It returns true
// when a new edge was created.
func (g *Graph) addEdge(a, b string) bool {
	ia, okA := g.index[a]
	ib, okB := g.index[b]
	if !okA || !okB || ia == ib {
		return false
	}

	key := newEdgeKey(ia, ib)
	if e, exists := g.edgeIdx[key]; exists {
		g.edges[e].Weight++
		return false
	}

	from, to := g.nodes[key.lo].ID, g.nodes[key.hi].ID
	g.edgeIdx[key] = len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Weight: 1})
	g.adj[ia] = append(g.adj[ia], ib)
	g.adj[ib] = append(g.adj[ib], ia)
	g.g.SetEdge(simple.Edge{F: simple.Node(int64(ia)), T: simple.Node(int64(ib))})
	return true
}

// NodeCount returns |V|
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns |E|
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Rows returns the number of aligned records the graph was built from
func (g *Graph) Rows() int { return g.rows }

// IsEmpty reports whether the graph has no nodes
func (g *Graph) IsEmpty() bool { return len(g.nodes) == 0 }

// Nodes returns the nodes in insertion order. The slice is a copy.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in insertion order. The slice is a copy.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Node looks up a node by value
func (g *Graph) Node(id string) (Node, bool) {
	i, exists := g.index[id]
	if !exists {
		return Node{}, false
	}
	return g.nodes[i], true
}

// IndexOf returns the insertion index (and gonum id) of a value
func (g *Graph) IndexOf(id string) (int, bool) {
	i, exists := g.index[id]
	return i, exists
}

// ValueOf returns the value stored at an insertion index
func (g *Graph) ValueOf(index int) (string, error) {
	if index < 0 || index >= len(g.nodes) {
		return "", fmt.Errorf("node index out of range: %d (nodes: %d)", index, len(g.nodes))
	}
	return g.nodes[index].ID, nil
}

// HasEdge reports whether a and b co-occurred in some record
func (g *Graph) HasEdge(a, b string) bool {
	ia, okA := g.index[a]
	ib, okB := g.index[b]
	if !okA || !okB {
		return false
	}
	_, exists := g.edgeIdx[newEdgeKey(ia, ib)]
	return exists
}

// Degree returns the number of distinct co-occurring partners of a value
func (g *Graph) Degree(id string) int {
	i, exists := g.index[id]
	if !exists {
		return 0
	}
	return len(g.adj[i])
}

// Neighbors returns the partners of a value in edge insertion order
func (g *Graph) Neighbors(id string) []string {
	i, exists := g.index[id]
	if !exists {
		return nil
	}
	out := make([]string, len(g.adj[i]))
	for k, j := range g.adj[i] {
		out[k] = g.nodes[j].ID
	}
	return out
}

// Adjacency returns the neighbor indices of the node at index. Callers must
// not modify the returned slice.
func (g *Graph) Adjacency(index int) []int {
	if index < 0 || index >= len(g.adj) {
		return nil
	}
	return g.adj[index]
}

// Gonum exposes the graph to gonum algorithms. Node ids are insertion indices.
func (g *Graph) Gonum() *simple.UndirectedGraph {
	return g.g
}
