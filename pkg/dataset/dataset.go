// Package dataset reads observational data and adjacency matrices from CSV files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// ErrParse is wrapped by every error caused by malformed file content.
var ErrParse = errors.New("malformed csv")

// Option configures Read.
type Option func(*options)

type options struct {
	index bool
	comma rune
}

// WithIndex sets whether the first column holds row labels. Default: true.
func WithIndex(index bool) Option {
	return func(o *options) {
		o.index = index
	}
}

// WithComma sets the field delimiter. Default: ','.
func WithComma(comma rune) Option {
	return func(o *options) {
		o.comma = comma
	}
}

// Load reads a dataset from a CSV file with a header row.
func Load(path string, opts ...Option) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Read parses a dataset. The header names the columns; when the index
// option is set, the first header cell and the first cell of each row are
// treated as the row index.
func Read(r io.Reader, opts ...Option) (*domain.Dataset, error) {
	o := options{index: true, comma: ','}
	for _, opt := range opts {
		opt(&o)
	}

	records, err := readAll(r, o.comma)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header: %w", ErrParse)
	}

	header := records[0]
	skip := 0
	if o.index {
		skip = 1
	}
	if len(header) <= skip {
		return nil, fmt.Errorf("no data columns: %w", ErrParse)
	}

	ds := &domain.Dataset{
		Columns: trimAll(header[skip:]),
		Rows:    make([][]float64, 0, len(records)-1),
	}

	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d has %d fields, want %d: %w", line, len(rec), len(header), ErrParse)
		}
		if o.index {
			ds.Index = append(ds.Index, strings.TrimSpace(rec[0]))
		}
		row, err := parseRow(rec[skip:], line, ds.Columns)
		if err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// LoadMatrix reads an adjacency matrix from a CSV file.
// A non-numeric first row is taken as the labels. When the labels row has
// one more cell than the matrix width, its first cell and the first column
// of every row are treated as an index and dropped.
func LoadMatrix(path string) (domain.Matrix, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open matrix: %w", err)
	}
	defer f.Close()

	m, labels, err := ReadMatrix(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, labels, nil
}

// ReadMatrix parses an adjacency matrix. See LoadMatrix.
func ReadMatrix(r io.Reader) (domain.Matrix, []string, error) {
	records, err := readAll(r, ',')
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty input: %w", ErrParse)
	}

	var labels []string
	if !numeric(records[0]) {
		labels = trimAll(records[0])
		records = records[1:]
	}

	index := len(labels) > 0 && len(labels) == len(records)+1
	if index {
		labels = labels[1:]
	}

	m := make(domain.Matrix, 0, len(records))
	for i, rec := range records {
		line := i + 1
		if labels != nil {
			line++
		}
		if index {
			if len(rec) == 0 {
				return nil, nil, fmt.Errorf("line %d is empty: %w", line, ErrParse)
			}
			rec = rec[1:]
		}
		row, err := parseRow(rec, line, nil)
		if err != nil {
			return nil, nil, err
		}
		m = append(m, row)
	}

	return m, labels, nil
}

func readAll(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrParse)
	}
	return records, nil
}

func parseRow(cells []string, line int, columns []string) ([]float64, error) {
	row := make([]float64, len(cells))
	for j, cell := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			col := strconv.Itoa(j + 1)
			if j < len(columns) {
				col = strconv.Quote(columns[j])
			}
			return nil, fmt.Errorf("line %d, column %s: %q is not a number: %w", line, col, cell, ErrParse)
		}
		row[j] = v
	}
	return row, nil
}

func numeric(cells []string) bool {
	for _, c := range cells {
		if _, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err != nil {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
