package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintEdges writes one line per edge of g. Positive coefficients are green,
// negative ones red. Colours are dropped when w is not a terminal.
func PrintEdges(w io.Writer, g *domain.Graph) {
	out := termenv.NewOutput(w)
	width := 0
	for _, e := range g.Edges {
		width = max(width, len(e.From))
	}

	for _, e := range g.Edges {
		label := out.String(e.Label)
		switch {
		case e.Weight > 0:
			label = label.Foreground(out.Color("#22c55e"))
		case e.Weight < 0:
			label = label.Foreground(out.Color("#ef4444"))
		}
		fmt.Fprintf(w, "%-*s -> %s  %s\n", width, e.From, e.To, label)
	}
}
