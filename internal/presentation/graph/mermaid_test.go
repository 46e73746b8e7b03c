package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/causalgraph/internal/presentation/graph"
	"github.com/aretw0/causalgraph/pkg/domain"
)

func sample() *domain.Graph {
	g := domain.NewGraph("smoking")
	g.AddNode("smoking")
	g.AddNode("tar-level")
	g.AddNode("cancer")
	g.AddEdge(domain.NewEdge("smoking", "tar-level", 0.9))
	g.AddEdge(domain.NewEdge("tar-level", "cancer", 0.7))
	g.AddEdge(domain.NewEdge("cancer", "smoking", -0.25))
	return g
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Plain Nodes And Weighted Edges",
			contains: []string{
				"graph LR\n",
				"smoking[\"smoking\"]",
				"tar_level[\"tar-level\"]",
				"smoking -- \"0.9\" --> tar_level",
				"cancer -. \"-0.25\" .-> smoking",
			},
			excludes: []string{"classDef"},
		},
		{
			name:    "Overlay Shapes And Classes",
			overlay: &graph.GraphOverlay{Treatment: "smoking", Outcome: "cancer"},
			contains: []string{
				"smoking([\"smoking\"])",
				"cancer((\"cancer\"))",
				"class smoking treatment;",
				"class cancer outcome;",
			},
		},
		{
			name:     "Overlay Ignores Unknown Nodes",
			overlay:  &graph.GraphOverlay{Treatment: "ghost"},
			contains: []string{"classDef treatment"},
			excludes: []string{"class ghost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(sample(), tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("expected output not to contain %q, got:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestGenerateMermaid_Unlabelled(t *testing.T) {
	g := domain.NewGraph("")
	g.AddEdge(domain.Edge{From: "a b", To: "c"})

	out := graph.GenerateMermaid(g, nil)
	if !strings.Contains(out, "a_b --> c") {
		t.Errorf("expected plain arrow, got:\n%s", out)
	}
}
