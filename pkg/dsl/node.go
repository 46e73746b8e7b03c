package dsl

import "github.com/aretw0/causalgraph/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node and its outgoing edges.
type NodeBuilder struct {
	node    domain.Node
	edges   []domain.Edge
	builder *Builder
}

// Attr sets a display attribute on the node (e.g. shape, color).
func (n *NodeBuilder) Attr(key, value string) *NodeBuilder {
	n.node.Attrs = append(n.node.Attrs, domain.Attr{Key: key, Value: value})
	return n
}

// Causes adds an edge to target labelled with the string form of weight.
func (n *NodeBuilder) Causes(target string, weight float64) *NodeBuilder {
	n.edges = append(n.edges, domain.NewEdge(n.node.ID, target, weight))
	return n
}

// Link adds an unlabelled edge to target, as produced by CPDAG orientations.
func (n *NodeBuilder) Link(target string) *NodeBuilder {
	n.edges = append(n.edges, domain.Edge{From: n.node.ID, To: target})
	return n
}

// EdgeAttr sets an attribute on the most recently added edge.
// It is a no-op when the node has no edges yet.
func (n *NodeBuilder) EdgeAttr(key, value string) *NodeBuilder {
	if len(n.edges) == 0 {
		return n
	}
	last := &n.edges[len(n.edges)-1]
	last.Attrs = append(last.Attrs, domain.Attr{Key: key, Value: value})
	return n
}

// Add is a shortcut back to the parent builder.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
