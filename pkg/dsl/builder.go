package dsl

import (
	"fmt"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// Builder manages the graph construction.
// Nodes keep the order of their first Add call.
type Builder struct {
	name  string
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add declares a node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles the declarations into a graph.
// Edge targets must be declared with Add, either before or after the edge.
func (b *Builder) Build() (*domain.Graph, error) {
	g := domain.NewGraph(b.name)
	for _, id := range b.order {
		nb := b.nodes[id]
		g.Nodes = append(g.Nodes, nb.node)
	}

	for _, id := range b.order {
		for _, e := range b.nodes[id].edges {
			if _, ok := b.nodes[e.To]; !ok {
				return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, domain.ErrUnknownNode)
			}
			g.Edges = append(g.Edges, e)
		}
	}

	return g, nil
}
