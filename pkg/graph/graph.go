package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey is returned by [Graph.AddNode] for nodes whose key is empty,
	// e.g. an outcome without code and note.
	ErrEmptyKey = errors.New("node key must not be empty")

	// ErrDuplicateKey is returned by [Graph.AddNode] when a node with the same
	// key already exists. Keys are the identity of nodes.
	ErrDuplicateKey = errors.New("duplicate node key")

	// ErrUnknownSource is returned by [Graph.AddEdge] when the source node is
	// not part of the graph.
	ErrUnknownSource = errors.New("unknown source node")

	// ErrUnknownTarget is returned by [Graph.AddEdge] when the target node is
	// not part of the graph.
	ErrUnknownTarget = errors.New("unknown target node")

	// ErrSealed is returned by mutating methods after [Graph.Seal].
	ErrSealed = errors.New("graph is sealed")
)

// Metadata describes the decision table a graph was built from.
type Metadata struct {
	EBDCode string `json:"ebd_code"`
	Chapter string `json:"chapter"`
	Section string `json:"section"`
	EBDName string `json:"ebd_name,omitempty"`
	Role    string `json:"role"`
	Remark  string `json:"remark,omitempty"`
}

// Instruction is a multi-step instruction: free text applying from FirstStep
// onwards until the next instruction starts.
type Instruction struct {
	Text      string `json:"text"`
	FirstStep string `json:"first_step"`
}

type edgeKey struct{ src, dst string }

// Graph is a keyed directed graph of decision nodes.
//
// Nodes and edges are kept in insertion order so that every traversal and
// rendering is deterministic. The zero value is not usable; use [New].
// A sealed Graph is safe for concurrent reads.
type Graph struct {
	meta         Metadata
	instructions []Instruction

	nodes    map[string]Node
	order    []string
	edges    map[edgeKey]*Edge
	edgeSeq  []edgeKey
	outgoing map[string][]string // key -> successor keys, in edge order
	incoming map[string][]string // key -> predecessor keys, in edge order

	sealed bool
}

// New creates an empty graph.
func New(meta Metadata, instructions []Instruction) *Graph {
	return &Graph{
		meta:         meta,
		instructions: instructions,
		nodes:        make(map[string]Node),
		edges:        make(map[edgeKey]*Edge),
		outgoing:     make(map[string][]string),
		incoming:     make(map[string][]string),
	}
}

// Meta returns the graph metadata.
func (g *Graph) Meta() Metadata { return g.meta }

// Instructions returns the multi-step instructions in table order.
func (g *Graph) Instructions() []Instruction { return g.instructions }

// Seal forbids further mutation.
func (g *Graph) Seal() { g.sealed = true }

// Sealed reports whether [Graph.Seal] has been called.
func (g *Graph) Sealed() bool { return g.sealed }

// AddNode adds n to the graph. It returns ErrEmptyKey, ErrDuplicateKey or
// ErrSealed without modifying the graph.
func (g *Graph) AddNode(n Node) error {
	if g.sealed {
		return ErrSealed
	}
	key := n.Key()
	if key == "" {
		return ErrEmptyKey
	}
	if _, exists := g.nodes[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	g.nodes[key] = n
	g.order = append(g.order, key)
	return nil
}

// AddEdge adds e to the graph. Both endpoints must already be part of the
// graph (by key and identity). An existing edge between the same source and
// target is replaced in place.
func (g *Graph) AddEdge(e Edge) error {
	if g.sealed {
		return ErrSealed
	}
	src, dst := e.Source.Key(), e.Target.Key()
	if n, ok := g.nodes[src]; !ok || n != e.Source {
		return fmt.Errorf("%w: %s", ErrUnknownSource, src)
	}
	if n, ok := g.nodes[dst]; !ok || n != e.Target {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, dst)
	}

	k := edgeKey{src, dst}
	if _, exists := g.edges[k]; !exists {
		g.edgeSeq = append(g.edgeSeq, k)
		g.outgoing[src] = append(g.outgoing[src], dst)
		g.incoming[dst] = append(g.incoming[dst], src)
	}
	edge := e
	g.edges[k] = &edge
	return nil
}

// Node returns the node with the given key.
func (g *Graph) Node(key string) (Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// HasNode reports whether a node with the given key exists.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, k := range g.order {
		out[i] = g.nodes[k]
	}
	return out
}

// Keys returns all node keys in insertion order.
func (g *Graph) Keys() []string {
	return append([]string(nil), g.order...)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edgeSeq))
	for i, k := range g.edgeSeq {
		out[i] = *g.edges[k]
	}
	return out
}

// Edge returns the edge from src to dst.
func (g *Graph) Edge(src, dst string) (Edge, bool) {
	e, ok := g.edges[edgeKey{src, dst}]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// Outgoing returns the edges leaving key, in insertion order.
func (g *Graph) Outgoing(key string) []Edge {
	succ := g.outgoing[key]
	out := make([]Edge, len(succ))
	for i, dst := range succ {
		out[i] = *g.edges[edgeKey{key, dst}]
	}
	return out
}

// Successors returns the keys of the targets of edges leaving key.
func (g *Graph) Successors(key string) []string {
	return append([]string(nil), g.outgoing[key]...)
}

// Predecessors returns the keys of the sources of edges entering key.
func (g *Graph) Predecessors(key string) []string {
	return append([]string(nil), g.incoming[key]...)
}

// InDegree returns the number of edges entering key.
func (g *Graph) InDegree(key string) int { return len(g.incoming[key]) }

// OutDegree returns the number of edges leaving key.
func (g *Graph) OutDegree(key string) int { return len(g.outgoing[key]) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edgeSeq) }

// First returns the node Start points to, if any.
func (g *Graph) First() (Node, bool) {
	succ := g.outgoing[StartKey]
	if len(succ) == 0 {
		return nil, false
	}
	return g.nodes[succ[0]], true
}

// StepNodes returns the decision and transition nodes in insertion order.
func (g *Graph) StepNodes() []Node {
	var out []Node
	for _, k := range g.order {
		if _, ok := StepNumber(g.nodes[k]); ok {
			out = append(out, g.nodes[k])
		}
	}
	return out
}
