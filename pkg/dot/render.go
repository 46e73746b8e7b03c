package dot

import (
	"strconv"
	"strings"

	"github.com/aretw0/causalgraph/pkg/domain"
)

var reserved = map[string]bool{
	"strict":   true,
	"graph":    true,
	"digraph":  true,
	"subgraph": true,
	"node":     true,
	"edge":     true,
}

func isReserved(s string) bool {
	return reserved[strings.ToLower(s)]
}

// ID returns s as a DOT identifier, quoting it unless it is a plain name or a numeral.
// Inside quotes " is escaped, as is a backslash that would otherwise be read
// as an escape: one before \, " or a newline, or at the end of s.
func ID(s string) string {
	if s != "" && !isReserved(s) && (isPlainName(s) || isNumeral(s)) {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\\' && (i+1 == len(s) || strings.IndexByte("\\\"\n", s[i+1]) >= 0):
			sb.WriteString(`\\`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r >= 0x80
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isPlainName(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

func isNumeral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	digits, dot := 0, false
	for _, r := range s {
		switch {
		case isDigit(r):
			digits++
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

func parseWeight(label string) float64 {
	v, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return 0
	}
	return v
}

// FromGraph builds the syntax tree of g: graph attributes first, then
// every node in declaration order, then every edge in order.
func FromGraph(g *domain.Graph) *Document {
	doc := &Document{
		Strict:   g.Strict,
		Directed: g.Directed,
		ID:       g.Name,
	}
	if len(g.Attrs) > 0 {
		doc.Stmts = append(doc.Stmts, Stmt{Kind: StmtDefaults, IDs: []string{"graph"}, Attrs: g.Attrs})
	}
	for _, n := range g.Nodes {
		doc.Stmts = append(doc.Stmts, Stmt{Kind: StmtNode, IDs: []string{n.ID}, Attrs: n.Attrs})
	}
	for _, e := range g.Edges {
		var attrs []domain.Attr
		if e.Label != "" {
			attrs = append(attrs, domain.Attr{Key: domain.AttrLabel, Value: e.Label})
		}
		attrs = append(attrs, e.Attrs...)
		doc.Stmts = append(doc.Stmts, Stmt{Kind: StmtEdge, IDs: []string{e.From, e.To}, Attrs: attrs})
	}
	return doc
}

// Render returns the multi-line description of g, one tab-indented
// statement per line, as emitted by Graphviz front ends:
//
//	digraph {
//		x0
//		x1
//		x1 -> x0 [label=0.5]
//	}
func Render(g *domain.Graph) string {
	return FromGraph(g).Native()
}

// RenderTarget returns the single-line description of g accepted by
// effect-estimation tools: digraph {x0;x1;x1 -> x0 [label=0.5]}
func RenderTarget(g *domain.Graph) string {
	return FromGraph(g).Target()
}

// Native renders the document one statement per line.
func (d *Document) Native() string {
	var sb strings.Builder
	sb.WriteString(d.header())
	sb.WriteString("{\n")
	for _, s := range d.Stmts {
		sb.WriteByte('\t')
		sb.WriteString(s.String(d.Directed))
		sb.WriteByte('\n')
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Target renders the document on one line with ';' separators.
func (d *Document) Target() string {
	stmts := make([]string, len(d.Stmts))
	for i, s := range d.Stmts {
		stmts[i] = s.String(d.Directed)
	}
	return d.header() + "{" + strings.Join(stmts, ";") + "}"
}

func (d *Document) header() string {
	var sb strings.Builder
	if d.Strict {
		sb.WriteString("strict ")
	}
	if d.Directed {
		sb.WriteString("digraph ")
	} else {
		sb.WriteString("graph ")
	}
	if d.ID != "" {
		sb.WriteString(ID(d.ID))
		sb.WriteByte(' ')
	}
	return sb.String()
}

// String renders a single statement without separator.
func (s Stmt) String(directed bool) string {
	switch s.Kind {
	case StmtAssign:
		a := s.Attrs[0]
		return ID(a.Key) + "=" + ID(a.Value)
	case StmtDefaults:
		return s.IDs[0] + " " + attrList(s.Attrs)
	case StmtEdge:
		op := " -> "
		if !directed {
			op = " -- "
		}
		ids := make([]string, len(s.IDs))
		for i, id := range s.IDs {
			ids[i] = ID(id)
		}
		out := strings.Join(ids, op)
		if len(s.Attrs) > 0 {
			out += " " + attrList(s.Attrs)
		}
		return out
	default:
		out := ID(s.IDs[0])
		if len(s.Attrs) > 0 {
			out += " " + attrList(s.Attrs)
		}
		return out
	}
}

func attrList(attrs []domain.Attr) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = ID(a.Key) + "=" + ID(a.Value)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
