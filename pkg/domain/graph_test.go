package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatWeight(t *testing.T) {
	cases := map[float64]string{
		0.5:     "0.5",
		0.02:    "0.02",
		-1.25:   "-1.25",
		3:       "3",
		1e-05:   "1e-05",
		0.10001: "0.10001",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatWeight(in), "FormatWeight(%v)", in)
	}
}

func TestGraph_AddEdgeDeclaresEndpoints(t *testing.T) {
	g := NewGraph("g")
	g.AddNode("a")
	g.AddEdge(NewEdge("b", "a", 0.3))

	assert.Equal(t, []string{"a", "b"}, g.Labels())
	assert.False(t, g.AddNode("a"), "duplicate declaration must be rejected")
	assert.Equal(t, []string{"b"}, g.Parents("a"))
	assert.Equal(t, []string{"a"}, g.Children("b"))

	e, ok := g.Edge("b", "a")
	require.True(t, ok)
	assert.Equal(t, "0.3", e.Label)
	_, ok = g.Edge("a", "b")
	assert.False(t, ok)
}

func TestGraph_MatrixRoundTrip(t *testing.T) {
	g := NewGraph("")
	g.AddNode("x0")
	g.AddNode("x1")
	g.AddNode("x2")
	g.AddEdge(NewEdge("x1", "x0", 0.5))
	g.AddEdge(NewEdge("x0", "x2", -2))

	m := g.Matrix()
	assert.Equal(t, Matrix{
		{0, 0.5, 0},
		{0, 0, 0},
		{-2, 0, 0},
	}, m)
}

func TestMatrix_Dim(t *testing.T) {
	n, err := Matrix{{0, 1}, {1, 0}}.Dim()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = Matrix{}.Dim()
	assert.ErrorIs(t, err, ErrEmptyMatrix)

	_, err = Matrix{{0, 1}, {1}}.Dim()
	assert.ErrorIs(t, err, ErrNotSquare)

	_, err = Matrix{{0, 1, 2}, {1, 0, 2}}.Dim()
	assert.ErrorIs(t, err, ErrNotSquare)

	_, err = Matrix{{math.NaN()}}.Dim()
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"x0", "x1", "x2"}, DefaultLabels(3))

	assert.NoError(t, ValidateLabels([]string{"a", "b"}, 2))
	assert.ErrorIs(t, ValidateLabels([]string{"a"}, 2), ErrLabelCount)
	assert.ErrorIs(t, ValidateLabels([]string{"a", "a"}, 2), ErrDuplicateLabel)
}

func TestDataset_Column(t *testing.T) {
	d := &Dataset{
		Columns: []string{"t", "y"},
		Rows:    [][]float64{{1, 2}, {3, 4}},
	}

	col, err := d.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, col)

	_, err = d.Column("z")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	rows, cols := d.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
}
