package dot

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every SyntaxError.
var ErrSyntax = errors.New("dot syntax error")

// SyntaxError reports malformed or unsupported graph text.
// Grammar errors carry the position of the offending token; unsupported
// constructs (subgraphs, ports, HTML strings) leave Line and Column zero.
type SyntaxError struct {
	Line   int    // 1-based line, 0 when unknown
	Column int    // 1-based column; a tab advances it by four
	Msg    string // Human-readable reason
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
