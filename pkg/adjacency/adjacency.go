// Package adjacency turns weighted adjacency matrices reported by causal
// discovery into directed graphs.
//
// Entry [r][c] of the matrix is the coefficient of the edge from node c to
// node r, the convention of LiNGAM's adjacency_matrix_. Entries whose absolute
// value does not exceed the threshold are treated as missing edges.
package adjacency

import (
	"fmt"
	"math"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// Option configures Build.
type Option func(*options)

type options struct {
	name      string
	labels    []string
	threshold float64
}

// WithLabels names the nodes. The default is x0, x1, ...
func WithLabels(labels ...string) Option {
	return func(o *options) {
		o.labels = labels
	}
}

// WithThreshold sets the absolute value at or below which entries are ignored.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithName sets the graph ID.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Build converts m into a directed graph.
// Every label is declared as a node, in order, including isolated ones.
// Edges are emitted in row-major order of the matrix.
//
// Entry m[r][c] is the edge labels[c] -> labels[r]: rows are effects and
// columns are causes. With labels a, b the matrix
//
//	[[0,    0.5],
//	 [0.02, 0  ]]
//
// yields b -> a [label=0.5] followed by a -> b [label=0.02].
func Build(m domain.Matrix, opts ...Option) (*domain.Graph, error) {
	o := options{threshold: domain.DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	n, err := m.Dim()
	if err != nil {
		return nil, fmt.Errorf("invalid adjacency matrix: %w", err)
	}

	labels := o.labels
	if len(labels) == 0 {
		labels = domain.DefaultLabels(n)
	}
	if err := domain.ValidateLabels(labels, n); err != nil {
		return nil, fmt.Errorf("invalid labels: %w", err)
	}

	g := domain.NewGraph(o.name)
	for _, l := range labels {
		g.Nodes = append(g.Nodes, domain.Node{ID: l})
	}

	for r, row := range m {
		for c, v := range row {
			if math.Abs(v) <= o.threshold {
				continue
			}
			g.Edges = append(g.Edges, domain.NewEdge(labels[c], labels[r], v))
		}
	}

	return g, nil
}

// FromDiscovery builds the graph reported by a discovery tool.
// Labels configured through opts take precedence over the reported ones.
func FromDiscovery(d *domain.Discovery, opts ...Option) (*domain.Graph, error) {
	all := make([]Option, 0, len(opts)+1)
	if len(d.Labels) > 0 {
		all = append(all, WithLabels(d.Labels...))
	}
	all = append(all, opts...)
	return Build(d.Matrix, all...)
}

// Count returns the number of entries of m strictly above threshold.
func Count(m domain.Matrix, threshold float64) int {
	count := 0
	for _, row := range m {
		for _, v := range row {
			if math.Abs(v) > threshold {
				count++
			}
		}
	}
	return count
}
