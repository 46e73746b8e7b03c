package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func chain(labels ...string) *Graph {
	g := NewGraph("")
	for _, l := range labels {
		g.AddNode(l)
	}
	return g
}

func TestDiff(t *testing.T) {
	base := chain("a", "b", "c")
	base.AddEdge(NewEdge("a", "b", 0.5))
	base.AddEdge(NewEdge("b", "c", 1.2))

	tests := []struct {
		name     string
		old      *Graph
		new      func() *Graph
		wantDiff *GraphDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  func() *Graph { return base },
			wantDiff: &GraphDiff{
				AddedNodes: []string{"a", "b", "c"},
				AddedEdges: base.Edges,
			},
		},
		{
			name:     "No Changes",
			old:      base,
			new:      func() *Graph { return base },
			wantDiff: nil,
		},
		{
			name: "Relabelled Edge",
			old:  base,
			new: func() *Graph {
				g := chain("a", "b", "c")
				g.AddEdge(NewEdge("a", "b", 0.7))
				g.AddEdge(NewEdge("b", "c", 1.2))
				return g
			},
			wantDiff: &GraphDiff{
				Relabelled: []EdgeChange{{From: "a", To: "b", OldLabel: "0.5", NewLabel: "0.7"}},
			},
		},
		{
			name: "Reversed And Removed",
			old:  base,
			new: func() *Graph {
				g := chain("a", "b", "c")
				g.AddEdge(NewEdge("b", "a", 0.5))
				return g
			},
			wantDiff: &GraphDiff{
				RemovedEdges: []Edge{NewEdge("b", "c", 1.2)},
				Reversed:     []Edge{NewEdge("b", "a", 0.5)},
			},
		},
		{
			name: "Node Added And Removed",
			old:  chain("a", "b"),
			new:  func() *Graph { return chain("a", "z") },
			wantDiff: &GraphDiff{
				AddedNodes:   []string{"z"},
				RemovedNodes: []string{"b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new())
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}

			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Sections Omitted", func(t *testing.T) {
		g1 := chain("a")
		g2 := chain("a", "b")
		diff := Diff(g1, g2)

		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"added_edges"`) {
			t.Errorf("JSON should not contain 'added_edges' when empty, got: %s", string(bytes))
		}
		if !strings.Contains(string(bytes), `"added_nodes":["b"]`) {
			t.Errorf("JSON should list added node, got: %s", string(bytes))
		}
	})
}
