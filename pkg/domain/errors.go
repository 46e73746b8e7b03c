package domain

import "errors"

// ErrEmptyMatrix is returned when a matrix has no rows.
var ErrEmptyMatrix = errors.New("empty matrix")

// ErrNotSquare is returned when a matrix is ragged or has more rows than columns (or vice versa).
var ErrNotSquare = errors.New("matrix is not square")

// ErrNonFinite is returned when a matrix holds NaN or infinite coefficients.
var ErrNonFinite = errors.New("non-finite coefficient")

// ErrLabelCount is returned when the number of labels does not match the matrix dimension.
var ErrLabelCount = errors.New("label count does not match matrix dimension")

// ErrDuplicateLabel is returned when two nodes share a label.
var ErrDuplicateLabel = errors.New("duplicate label")

// ErrUnknownNode is returned when a node referenced by name is not part of the graph.
var ErrUnknownNode = errors.New("unknown node")

// ErrUnknownColumn is returned when a dataset has no column with the requested name.
var ErrUnknownColumn = errors.New("unknown column")

// ErrGraphNotFound is returned when a graph name cannot be found in the store.
var ErrGraphNotFound = errors.New("graph not found")

// ErrInvalidName is returned when a graph name cannot be used as a storage key.
var ErrInvalidName = errors.New("invalid graph name")
