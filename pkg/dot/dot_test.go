package dot_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/causalgraph/pkg/adjacency"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/dot"
	"github.com/aretw0/causalgraph/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := adjacency.Build(domain.Matrix{{0, 0.5}, {0.02, 0}}, adjacency.WithLabels("a", "b"))
	require.NoError(t, err)
	return g
}

func TestRender(t *testing.T) {
	got := dot.Render(scenarioGraph(t))
	want := "digraph {\n" +
		"\ta\n" +
		"\tb\n" +
		"\tb -> a [label=0.5]\n" +
		"\ta -> b [label=0.02]\n" +
		"}\n"
	assert.Equal(t, want, got)
}

func TestRenderTarget(t *testing.T) {
	got := dot.RenderTarget(scenarioGraph(t))
	assert.Equal(t, "digraph {a;b;b -> a [label=0.5];a -> b [label=0.02]}", got)
}

func TestRender_Quoting(t *testing.T) {
	b := dsl.New("my graph")
	b.Add("years of school").Causes("node", 0.00001)
	b.Add("node")
	b.Add("x\"y").Attr("shape", "box")
	g, err := b.Build()
	require.NoError(t, err)

	got := dot.Render(g)
	assert.Contains(t, got, `digraph "my graph" {`)
	assert.Contains(t, got, "\t\"years of school\" -> \"node\" [label=\"1e-05\"]\n")
	assert.Contains(t, got, "\t\"x\\\"y\" [shape=box]\n")
}

func TestID(t *testing.T) {
	cases := map[string]string{
		"x0":     "x0",
		"_a1":    "_a1",
		"0.5":    "0.5",
		"-.3":    "-.3",
		"-12":    "-12",
		"1e-05":  `"1e-05"`,
		"a b":    `"a b"`,
		"":       `""`,
		"node":   `"node"`,
		"Graph":  `"Graph"`,
		"renda":  "renda",
		"1abc":   `"1abc"`,
		`say"hi`: `"say\"hi"`,
		`C:\`:    `"C:\\"`,
		`a\"b`:   `"a\\\"b"`,
		`x\ly`:   `"x\ly"`,
		`\\`:     `"\\\\"`,
	}
	for in, want := range cases {
		assert.Equal(t, want, dot.ID(in), "ID(%q)", in)
	}
}

// legacyTrim is the offset-based conversion the single-line dialect was
// historically produced with. It only works for unnamed, non-strict graphs.
func legacyTrim(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", ";")
	s = strings.ReplaceAll(s, "\t", "")
	return s[:9] + s[10:len(s)-2] + s[len(s)-1:]
}

func TestNormalize_MatchesLegacyTrimming(t *testing.T) {
	matrices := []domain.Matrix{
		{{0, 0.5}, {0.02, 0}},
		{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		{{0, 0, 0}, {1.5, 0, 0}, {-0.7, 0.25, 0}},
	}
	for _, m := range matrices {
		g, err := adjacency.Build(m)
		require.NoError(t, err)

		native := dot.Render(g)
		got, err := dot.Normalize(native)
		require.NoError(t, err)

		assert.Equal(t, legacyTrim(native), got)
		assert.Equal(t, dot.RenderTarget(g), got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	once, err := dot.Normalize(dot.Render(scenarioGraph(t)))
	require.NoError(t, err)
	twice, err := dot.Normalize(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalize_FreeForm(t *testing.T) {
	src := `
// discovered by PC
strict digraph G {
	rankdir = LR
	node [shape=ellipse, color="gray"];
	# preprocessor-style comment
	a; b
	a -> b -> c [label="0.3"; style=dashed]
	/* trailing */
}`
	got, err := dot.Normalize(src)
	require.NoError(t, err)
	assert.Equal(t, "strict digraph G {rankdir=LR;node [shape=ellipse color=gray];a;b;a -> b -> c [label=0.3 style=dashed]}", got)
}

func TestNormalize_Undirected(t *testing.T) {
	got, err := dot.Normalize("graph {\n\ta -- b\n}\n")
	require.NoError(t, err)
	assert.Equal(t, "graph {a -- b}", got)
}

func TestNormalize_Errors(t *testing.T) {
	cases := map[string]string{
		"missing header":      "{a -> b}",
		"missing brace":       "digraph {\n\ta -> b\n",
		"unterminated string": `digraph {"a -> b}`,
		"trailing garbage":    "digraph {a} extra",
		"keyword as node":     "digraph {edge -> a}",
		"bad attribute":       "digraph {a [label]}",
		"malformed number":    "digraph {a [label=1e-05]}",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dot.Normalize(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, dot.ErrSyntax)

			var se *dot.SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Positive(t, se.Line)
			assert.Positive(t, se.Column)
		})
	}
}

func TestNormalize_Unsupported(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"wrong edge op":          {"digraph {a -- b}", "undirected edge"},
		"directed in undirected": {"graph {a -> b}", "directed edge"},
		"subgraph":               {"digraph {subgraph cluster {a}}", "subgraphs"},
		"subgraph endpoint":      {"digraph {{a b} -> c}", "subgraphs"},
		"port":                   {"digraph {a:n -> b}", "ports"},
		"html label":             {"digraph {a [label=<b>x</b>]}", "HTML"},
		"two graphs":             {"digraph {a} digraph {b}", "single graph"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := dot.Normalize(tc.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, dot.ErrSyntax)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSyntaxError_Position(t *testing.T) {
	_, err := dot.Parse("digraph {\n\ta -> \n}")
	var se *dot.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Line)
	assert.Equal(t, 1, se.Column)
	assert.Contains(t, se.Error(), "3:1:")
}

func TestParse_RoundTrip(t *testing.T) {
	cases := map[string]struct {
		m      domain.Matrix
		labels []string
		name   string
	}{
		"wages": {
			m: domain.Matrix{
				{0, 0, 0, 0},
				{0.9, 0, 0, 0},
				{0, -0.45, 0, 0.011},
				{0, 0, 0, 0},
			},
			labels: []string{"treatment", "mediator", "outcome", "age"},
			name:   "wages",
		},
		"backslashes": {
			m:      domain.Matrix{{0, 0.5, 0}, {0, 0, 0.25}, {0.1, 0, 0}},
			labels: []string{`C:\`, `a\"b`, `line\nbreak`},
			name:   `dir\`,
		},
		"quotes": {
			m:      domain.Matrix{{0, 1}, {0, 0}},
			labels: []string{`say "hi"`, `\\share`},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			opts := []adjacency.Option{adjacency.WithLabels(tc.labels...)}
			if tc.name != "" {
				opts = append(opts, adjacency.WithName(tc.name))
			}
			g, err := adjacency.Build(tc.m, opts...)
			require.NoError(t, err)

			for _, text := range []string{dot.Render(g), dot.RenderTarget(g)} {
				parsed, err := dot.Parse(text)
				require.NoError(t, err, text)
				assert.Equal(t, g, parsed)
			}

			normalized, err := dot.Normalize(dot.Render(g))
			require.NoError(t, err)
			assert.Equal(t, dot.RenderTarget(g), normalized)
		})
	}
}

func TestParse_LabelEscapes(t *testing.T) {
	g, err := dot.Parse("digraph {a [label=\"x\\ly\"]; \"long \\\nname\"}")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "long name"}, g.Labels())
	assert.Equal(t, []domain.Attr{{Key: "label", Value: `x\ly`}}, g.Nodes[0].Attrs)
}

func TestParse_ChainsAndAttributes(t *testing.T) {
	g, err := dot.Parse(`digraph { a [shape=box] a -> b -> c [label=2 color=red]; b [color=blue] }`)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, g.Labels())
	require.Len(t, g.Edges, 2)
	for _, e := range g.Edges {
		assert.Equal(t, "2", e.Label)
		assert.Equal(t, 2.0, e.Weight)
		assert.Equal(t, []domain.Attr{{Key: "color", Value: "red"}}, e.Attrs)
	}
	assert.Equal(t, []domain.Attr{{Key: "color", Value: "blue"}}, g.Nodes[1].Attrs)
}
