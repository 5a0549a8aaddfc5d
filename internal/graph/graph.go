// Package graph builds directed citation graphs from work records and writes them
// in GML or GraphML.
//
// Two builders are provided: BuildWorks, with one node per work and an edge per
// citation, and BuildAuthors, with one node per author and edges weighted by how
// often one author cited another relative to how often they could have.
package graph

import "sort"

// Attrs holds node or edge attributes. Values are JSON-like: string, bool, int,
// float64, json.Number, nested map[string]any and []any.
type Attrs map[string]any

// SortedKeys returns the attribute names in lexical order.
func (a Attrs) SortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node is a graph vertex keyed by a work or author identifier.
type Node struct {
	ID    string
	Attrs Attrs
}

// Edge is a directed edge between two node identifiers.
type Edge struct {
	Source string
	Target string
	Attrs  Attrs
}

type edgeKey struct {
	source, target int
}

// Graph is a directed graph with at most one edge per ordered node pair.
// Nodes keep their insertion order; edges are listed grouped by source node in
// node order, then in insertion order.
type Graph struct {
	nodes     []*Node
	nodeIndex map[string]int

	edges     []*Edge
	edgeIndex map[edgeKey]int
	out       [][]int // edge indices per source node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[edgeKey]int),
	}
}

// AddNode adds a node, or merges attrs into the existing node with the same id.
// It returns the node's position.
func (g *Graph) AddNode(id string, attrs Attrs) int {
	if i, ok := g.nodeIndex[id]; ok {
		n := g.nodes[i]
		for k, v := range attrs {
			n.Attrs[k] = v
		}
		return i
	}

	n := &Node{ID: id, Attrs: Attrs{}}
	for k, v := range attrs {
		n.Attrs[k] = v
	}
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.nodeIndex[id] = len(g.nodes) - 1
	return len(g.nodes) - 1
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil
	}
	return g.nodes[i]
}

// AddEdge adds a directed edge, creating missing endpoints without attributes.
// Adding an existing edge merges attrs into it. The edge is returned.
func (g *Graph) AddEdge(source, target string, attrs Attrs) *Edge {
	s := g.AddNode(source, nil)
	t := g.AddNode(target, nil)
	return g.addEdgeAt(s, t, attrs)
}

func (g *Graph) addEdgeAt(s, t int, attrs Attrs) *Edge {
	key := edgeKey{s, t}
	if i, ok := g.edgeIndex[key]; ok {
		e := g.edges[i]
		for k, v := range attrs {
			e.Attrs[k] = v
		}
		return e
	}

	e := &Edge{Source: g.nodes[s].ID, Target: g.nodes[t].ID, Attrs: Attrs{}}
	for k, v := range attrs {
		e.Attrs[k] = v
	}
	g.edges = append(g.edges, e)
	g.edgeIndex[key] = len(g.edges) - 1
	g.out[s] = append(g.out[s], len(g.edges)-1)
	return e
}

// Edge returns the edge source → target, or nil.
func (g *Graph) Edge(source, target string) *Edge {
	s, ok := g.nodeIndex[source]
	if !ok {
		return nil
	}
	t, ok := g.nodeIndex[target]
	if !ok {
		return nil
	}
	i, ok := g.edgeIndex[edgeKey{s, t}]
	if !ok {
		return nil
	}
	return g.edges[i]
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns the edges grouped by source node.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, idx := range g.out {
		for _, i := range idx {
			edges = append(edges, g.edges[i])
		}
	}
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return len(g.nodes) == 0
}
