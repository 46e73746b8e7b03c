package dot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/causalgraph/pkg/domain"
	gdot "gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"
)

// StmtKind classifies a statement of a graph body.
type StmtKind int

const (
	// StmtNode declares a node, optionally with attributes.
	StmtNode StmtKind = iota
	// StmtEdge declares a chain of edges a -> b -> c.
	StmtEdge
	// StmtDefaults sets graph, node or edge defaults: node [shape=box].
	StmtDefaults
	// StmtAssign sets a graph attribute: rankdir=LR.
	StmtAssign
)

// Stmt is one statement of a graph body.
type Stmt struct {
	Kind StmtKind
	// IDs holds the node ID (StmtNode), the chain (StmtEdge),
	// the target keyword (StmtDefaults) or the key (StmtAssign).
	IDs []string
	// Attrs holds attributes. For StmtAssign it holds a single pair.
	Attrs []domain.Attr
}

// Document is the syntax tree of a DOT graph, statements in source order.
// IDs and values are unquoted.
type Document struct {
	Strict   bool
	Directed bool
	ID       string
	Stmts    []Stmt
}

// positioned splits the "line:col: error: msg" form of parser errors.
var positioned = regexp.MustCompile(`(?s)^(\d+):(\d+): (?:error: )?(.*)$`)

// ParseDocument parses a single DOT graph.
// Subgraphs, ports and HTML strings are rejected with a SyntaxError.
func ParseDocument(src string) (*Document, error) {
	// Line comments must be terminated by a newline.
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	file, err := gdot.ParseString(src)
	if err != nil {
		return nil, syntaxError(err)
	}
	if len(file.Graphs) != 1 {
		return nil, &SyntaxError{Msg: fmt.Sprintf("expected a single graph, found %d", len(file.Graphs))}
	}

	g := file.Graphs[0]
	doc := &Document{Strict: g.Strict, Directed: g.Directed}
	if g.ID != "" {
		if doc.ID, err = value(g.ID); err != nil {
			return nil, err
		}
	}
	for _, stmt := range g.Stmts {
		s, err := convert(stmt, g.Directed)
		if err != nil {
			return nil, err
		}
		doc.Stmts = append(doc.Stmts, s)
	}
	return doc, nil
}

func syntaxError(err error) error {
	m := positioned.FindStringSubmatch(err.Error())
	if m == nil {
		return &SyntaxError{Msg: err.Error()}
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return &SyntaxError{Line: line, Column: col, Msg: m[3]}
}

func unsupported(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

func convert(stmt ast.Stmt, directed bool) (Stmt, error) {
	switch stmt := stmt.(type) {
	case *ast.NodeStmt:
		id, err := nodeID(stmt.Node)
		if err != nil {
			return Stmt{}, err
		}
		attrs, err := convertAttrs(stmt.Attrs)
		if err != nil {
			return Stmt{}, err
		}
		return Stmt{Kind: StmtNode, IDs: []string{id}, Attrs: attrs}, nil

	case *ast.EdgeStmt:
		from, err := vertexID(stmt.From)
		if err != nil {
			return Stmt{}, err
		}
		chain := []string{from}
		for e := stmt.To; e != nil; e = e.To {
			if directed && !e.Directed {
				return Stmt{}, unsupported("undirected edge '--' in digraph: %s", stmt)
			}
			if !directed && e.Directed {
				return Stmt{}, unsupported("directed edge '->' in undirected graph: %s", stmt)
			}
			id, err := vertexID(e.Vertex)
			if err != nil {
				return Stmt{}, err
			}
			chain = append(chain, id)
		}
		attrs, err := convertAttrs(stmt.Attrs)
		if err != nil {
			return Stmt{}, err
		}
		return Stmt{Kind: StmtEdge, IDs: chain, Attrs: attrs}, nil

	case *ast.AttrStmt:
		attrs, err := convertAttrs(stmt.Attrs)
		if err != nil {
			return Stmt{}, err
		}
		return Stmt{Kind: StmtDefaults, IDs: []string{stmt.Kind.String()}, Attrs: attrs}, nil

	case *ast.Attr:
		a, err := convertAttr(stmt)
		if err != nil {
			return Stmt{}, err
		}
		return Stmt{Kind: StmtAssign, IDs: []string{a.Key}, Attrs: []domain.Attr{a}}, nil

	case *ast.Subgraph:
		return Stmt{}, unsupported("subgraphs are not supported: %s", stmt)
	}
	return Stmt{}, unsupported("unsupported statement: %s", stmt)
}

func vertexID(v ast.Vertex) (string, error) {
	switch v := v.(type) {
	case *ast.Node:
		return nodeID(v)
	case *ast.Subgraph:
		return "", unsupported("subgraphs are not supported: %s", v)
	}
	return "", unsupported("unsupported vertex: %s", v)
}

func nodeID(n *ast.Node) (string, error) {
	if n.Port != nil {
		return "", unsupported("ports are not supported: %s", n)
	}
	return value(n.ID)
}

// convertAttrs returns nil for an empty list.
func convertAttrs(in []*ast.Attr) ([]domain.Attr, error) {
	var out []domain.Attr
	for _, a := range in {
		attr, err := convertAttr(a)
		if err != nil {
			return nil, err
		}
		out = append(out, attr)
	}
	return out, nil
}

func convertAttr(a *ast.Attr) (domain.Attr, error) {
	key, err := value(a.Key)
	if err != nil {
		return domain.Attr{}, err
	}
	val, err := value(a.Val)
	if err != nil {
		return domain.Attr{}, err
	}
	return domain.Attr{Key: key, Value: val}, nil
}

// value unquotes a raw ID as written in the source.
func value(raw string) (string, error) {
	switch {
	case strings.HasPrefix(raw, "<"):
		return "", unsupported("HTML strings are not supported: %s", raw)
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		return unquote(raw[1 : len(raw)-1]), nil
	}
	return raw, nil
}

// unquote decodes the body of a quoted ID. \" and \\ are escapes and a
// backslash before a newline joins the lines. Other backslashes are kept,
// so label escapes such as \n and \l survive a round trip.
func unquote(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\':
				sb.WriteByte(s[i+1])
				i++
				continue
			case '\n':
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Parse reads DOT text into a graph.
// Nodes are declared in order of first appearance, either in a node statement
// or as an edge endpoint. Edge chains expand into one edge per hop.
func Parse(src string) (*domain.Graph, error) {
	doc, err := ParseDocument(src)
	if err != nil {
		return nil, err
	}
	return doc.Graph(), nil
}

// Graph converts the syntax tree to a domain graph.
// Graph defaults (graph [..] and k=v) are kept; node and edge defaults are dropped.
func (d *Document) Graph() *domain.Graph {
	g := domain.NewGraph(d.ID)
	g.Directed = d.Directed
	g.Strict = d.Strict

	for _, s := range d.Stmts {
		switch s.Kind {
		case StmtAssign:
			g.Attrs = append(g.Attrs, s.Attrs...)
		case StmtDefaults:
			if s.IDs[0] == "graph" {
				g.Attrs = append(g.Attrs, s.Attrs...)
			}
		case StmtNode:
			id := s.IDs[0]
			if !g.AddNode(id, s.Attrs...) {
				i := g.NodeIndex(id)
				g.Nodes[i].Attrs = append(g.Nodes[i].Attrs, s.Attrs...)
			}
		case StmtEdge:
			for i := 0; i+1 < len(s.IDs); i++ {
				g.AddEdge(edgeFromAttrs(s.IDs[i], s.IDs[i+1], s.Attrs))
			}
		}
	}
	return g
}

func edgeFromAttrs(from, to string, attrs []domain.Attr) domain.Edge {
	e := domain.Edge{From: from, To: to}
	for _, a := range attrs {
		if a.Key == domain.AttrLabel && e.Label == "" {
			e.Label = a.Value
			e.Weight = parseWeight(a.Value)
			continue
		}
		e.Attrs = append(e.Attrs, a)
	}
	return e
}
