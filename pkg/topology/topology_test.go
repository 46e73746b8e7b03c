package topology_test

import (
	"testing"

	"github.com/aretw0/causalgraph/pkg/adjacency"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		matrix domain.Matrix
		labels []string
		order  []string
		cycles [][]string
	}{
		{
			name:   "chain",
			matrix: domain.Matrix{{0, 0, 0}, {0.8, 0, 0}, {0, 0.5, 0}},
			labels: []string{"x", "m", "y"},
			order:  []string{"x", "m", "y"},
		},
		{
			name:   "reversed declaration",
			matrix: domain.Matrix{{0, 0.7}, {0, 0}},
			labels: []string{"effect", "cause"},
			order:  []string{"cause", "effect"},
		},
		{
			name:   "isolated nodes keep declaration order",
			matrix: domain.Matrix{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
			order:  []string{"x0", "x1", "x2"},
		},
		{
			name:   "two cycle",
			matrix: domain.Matrix{{0, 0.5}, {0.02, 0}},
			labels: []string{"a", "b"},
			cycles: [][]string{{"a", "b"}},
		},
		{
			name:   "self loop",
			matrix: domain.Matrix{{0, 0}, {0.3, 0.9}},
			labels: []string{"a", "b"},
			cycles: [][]string{{"b"}},
		},
		{
			name: "cycle beside a chain",
			matrix: domain.Matrix{
				{0, 0, 0, 0},
				{0.4, 0, 0, 0},
				{0, 0, 0, 0.2},
				{0, 0, 0.6, 0},
			},
			cycles: [][]string{{"x2", "x3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []adjacency.Option
			if tt.labels != nil {
				opts = append(opts, adjacency.WithLabels(tt.labels...))
			}
			g, err := adjacency.Build(tt.matrix, opts...)
			require.NoError(t, err)

			s := topology.Analyze(g)
			assert.Equal(t, tt.order, s.Order)
			assert.Equal(t, tt.cycles, s.Cycles)
			assert.Equal(t, tt.cycles == nil, s.Acyclic())
		})
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	m := domain.Matrix{
		{0, 0, 0, 0},
		{0.5, 0, 0, 0},
		{0.5, 0, 0, 0},
		{0, 0.3, 0.3, 0},
	}
	g, err := adjacency.Build(m)
	require.NoError(t, err)

	first := topology.Analyze(g)
	for range 20 {
		assert.Equal(t, first, topology.Analyze(g))
	}
	assert.Equal(t, []string{"x0", "x1", "x2", "x3"}, first.Order)
}
