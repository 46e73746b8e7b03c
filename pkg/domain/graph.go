package domain

import "strconv"

// AttrLabel is the attribute key carrying an edge coefficient.
const AttrLabel = "label"

// Attr is a single key=value attribute. Attributes keep their declaration order.
type Attr struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Node represents a variable of the causal model.
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Attrs []Attr `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Edge represents a directed causal link From -> To.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// Label is the coefficient exactly as it is written in the graph description.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Weight is the numeric value of Label. It is zero when Label is not a number.
	Weight float64 `json:"weight" yaml:"weight"`

	// Attrs holds any attribute other than the label.
	Attrs []Attr `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Graph is a causal graph: nodes in declaration order and edges in emission order.
type Graph struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Directed bool   `json:"directed" yaml:"directed"`
	Strict   bool   `json:"strict,omitempty" yaml:"strict,omitempty"`
	Attrs    []Attr `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Nodes    []Node `json:"nodes" yaml:"nodes"`
	Edges    []Edge `json:"edges" yaml:"edges"`
}

// NewGraph returns an empty directed graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:     name,
		Directed: true,
		Nodes:    []Node{},
		Edges:    []Edge{},
	}
}

// FormatWeight returns the shortest decimal form that parses back to v.
func FormatWeight(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// NewEdge creates an edge labelled with the string form of weight.
func NewEdge(from, to string, weight float64) Edge {
	return Edge{
		From:   from,
		To:     to,
		Label:  FormatWeight(weight),
		Weight: weight,
	}
}

// HasNode reports whether id is declared.
func (g *Graph) HasNode(id string) bool {
	return g.NodeIndex(id) >= 0
}

// NodeIndex returns the declaration position of id, or -1.
func (g *Graph) NodeIndex(id string) int {
	for i, n := range g.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// AddNode declares id if it is not declared yet. It returns false for duplicates.
func (g *Graph) AddNode(id string, attrs ...Attr) bool {
	if g.HasNode(id) {
		return false
	}
	g.Nodes = append(g.Nodes, Node{ID: id, Attrs: attrs})
	return true
}

// AddEdge appends e, declaring its endpoints when needed.
func (g *Graph) AddEdge(e Edge) {
	g.AddNode(e.From)
	g.AddNode(e.To)
	g.Edges = append(g.Edges, e)
}

// Labels returns node IDs in declaration order.
func (g *Graph) Labels() []string {
	out := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.ID
	}
	return out
}

// Parents returns the sources of edges pointing to id, in edge order.
func (g *Graph) Parents(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e.From)
		}
	}
	return out
}

// Children returns the targets of edges leaving id, in edge order.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Edge returns the first edge from -> to.
func (g *Graph) Edge(from, to string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// Matrix rebuilds the adjacency matrix of g using the (to, from) convention.
// Unlabelled or non-numeric edges contribute their Weight, which may be zero.
func (g *Graph) Matrix() Matrix {
	m := NewMatrix(len(g.Nodes))
	for _, e := range g.Edges {
		from, to := g.NodeIndex(e.From), g.NodeIndex(e.To)
		if from < 0 || to < 0 {
			continue
		}
		m[to][from] = e.Weight
	}
	return m
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Name:     g.Name,
		Directed: g.Directed,
		Strict:   g.Strict,
		Attrs:    cloneAttrs(g.Attrs),
		Nodes:    make([]Node, len(g.Nodes)),
		Edges:    make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = Node{ID: n.ID, Attrs: cloneAttrs(n.Attrs)}
	}
	for i, e := range g.Edges {
		e.Attrs = cloneAttrs(e.Attrs)
		out.Edges[i] = e
	}
	return out
}

func cloneAttrs(attrs []Attr) []Attr {
	if attrs == nil {
		return nil
	}
	return append([]Attr(nil), attrs...)
}
