// Package graph implements the directed-graph executor behind the reasoning
// agent: a passive node container plus a concurrent depth-fan-out traversal
// that streams node results as they are produced.
package graph

// Graph stores nodes by identifier and the directed edges between them. It
// holds no traversal state; Traverse walks it using each node's declared
// successors.
type Graph struct {
	nodes map[string]Node
	edges map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make(map[string][]string),
	}
}

// AddNode registers a node under its own identifier, replacing any previous
// node with the same identifier.
func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID()] = n
}

// AddEdge records a directed edge. Edges document the expected topology;
// traversal follows the successor pairs nodes return at runtime.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// Node returns the node registered under id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edges returns the declared successors of id in insertion order.
func (g *Graph) Edges(id string) []string {
	return g.edges[id]
}
