package graph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/dot"
)

// Output formats understood by Format.
const (
	FormatDOT     = "dot"
	FormatTarget  = "target"
	FormatMermaid = "mermaid"
	FormatJSON    = "json"
)

// Formats lists every output format.
var Formats = []string{FormatDOT, FormatTarget, FormatMermaid, FormatJSON}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown format")

// Format renders g in the named format and returns the matching content type.
func Format(g *domain.Graph, format string, overlay *GraphOverlay) (string, string, error) {
	switch format {
	case FormatDOT, "":
		return dot.Render(g), "text/vnd.graphviz", nil
	case FormatTarget:
		return dot.RenderTarget(g), "text/plain; charset=utf-8", nil
	case FormatMermaid:
		return GenerateMermaid(g, overlay), "text/plain; charset=utf-8", nil
	case FormatJSON:
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return "", "", fmt.Errorf("failed to marshal graph: %w", err)
		}
		return string(data) + "\n", "application/json", nil
	default:
		return "", "", fmt.Errorf("%q (want one of %v): %w", format, Formats, ErrUnknownFormat)
	}
}
