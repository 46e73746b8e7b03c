// Package topology inspects the causal ordering of a graph.
//
// Backdoor adjustment assumes a directed acyclic graph. Discovery
// algorithms do not always deliver one: LiNGAM matrices can carry
// feedback entries above the threshold, and PC/GES may leave both
// orientations of an undecided edge. Analyze reports either a causal
// order or the groups of variables that prevent one.
package topology

import (
	"cmp"
	"errors"
	"slices"

	"github.com/aretw0/causalgraph/pkg/domain"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Structure describes the ordering of a graph.
type Structure struct {
	// Order lists every node, causes before effects. Empty when cyclic.
	Order []string `json:"order,omitempty"`

	// Cycles lists the strongly connected groups of nodes, each in
	// declaration order. A self loop forms a group of one.
	Cycles [][]string `json:"cycles,omitempty"`
}

// Acyclic reports whether no cycle was found.
func (s Structure) Acyclic() bool {
	return len(s.Cycles) == 0
}

// Analyze computes the structure of g. Ties in the order are broken by
// declaration order, so the result is deterministic.
func Analyze(g *domain.Graph) Structure {
	dg := simple.NewDirectedGraph()
	for i := range g.Nodes {
		dg.AddNode(simple.Node(int64(i)))
	}

	loops := map[int]bool{}
	for _, e := range g.Edges {
		from, to := g.NodeIndex(e.From), g.NodeIndex(e.To)
		if from < 0 || to < 0 {
			continue
		}
		if from == to {
			loops[from] = true
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
	}

	var groups [][]int
	sorted, err := topo.SortStabilized(dg, byID)
	if err != nil {
		var u topo.Unorderable
		if errors.As(err, &u) {
			for _, component := range u {
				groups = append(groups, indices(component))
			}
		}
	}
	for i := range loops {
		if !slices.ContainsFunc(groups, func(group []int) bool { return slices.Contains(group, i) }) {
			groups = append(groups, []int{i})
		}
	}

	var s Structure
	if len(groups) == 0 {
		s.Order = make([]string, 0, len(sorted))
		for _, n := range sorted {
			s.Order = append(s.Order, g.Nodes[n.ID()].ID)
		}
		return s
	}

	slices.SortFunc(groups, func(a, b []int) int { return cmp.Compare(a[0], b[0]) })
	for _, group := range groups {
		names := make([]string, len(group))
		for i, idx := range group {
			names[i] = g.Nodes[idx].ID
		}
		s.Cycles = append(s.Cycles, names)
	}
	return s
}

func byID(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
}

func indices(nodes []graph.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n.ID())
	}
	slices.Sort(out)
	return out
}
