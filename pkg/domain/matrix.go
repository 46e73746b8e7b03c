package domain

import (
	"fmt"
	"math"
	"strconv"
)

// DefaultThreshold is the absolute coefficient at or below which no edge is drawn.
const DefaultThreshold = 0.01

// Matrix is a square coefficient table. Entry [r][c] is the weight of the edge c -> r.
type Matrix [][]float64

// NewMatrix returns an n x n zero matrix.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// Dim validates the shape and values of m and returns its dimension.
func (m Matrix) Dim() (int, error) {
	n := len(m)
	if n == 0 {
		return 0, ErrEmptyMatrix
	}
	for r, row := range m {
		if len(row) != n {
			return 0, fmt.Errorf("row %d has %d columns, want %d: %w", r, len(row), n, ErrNotSquare)
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("entry [%d][%d]=%v: %w", r, c, v, ErrNonFinite)
			}
		}
	}
	return n, nil
}

// DefaultLabels returns x0 ... x(n-1).
func DefaultLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = "x" + strconv.Itoa(i)
	}
	return labels
}

// ValidateLabels checks that labels name n distinct nodes.
func ValidateLabels(labels []string, n int) error {
	if len(labels) != n {
		return fmt.Errorf("got %d labels for %d nodes: %w", len(labels), n, ErrLabelCount)
	}
	seen := make(map[string]bool, n)
	for _, l := range labels {
		if seen[l] {
			return fmt.Errorf("%q: %w", l, ErrDuplicateLabel)
		}
		seen[l] = true
	}
	return nil
}
