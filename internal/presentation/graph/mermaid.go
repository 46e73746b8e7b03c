package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// GraphOverlay marks the variables of interest of an analysis.
type GraphOverlay struct {
	Treatment string
	Outcome   string
}

// GenerateMermaid produces a Mermaid flowchart (left to right) for g.
// It applies semantic styling:
// - Treatment: ([Stadium])
// - Outcome: ((Circle))
// - Default: [Rectangle]
// Edges carry their coefficient; negative coefficients are drawn dotted.
// Overlay styles are applied when overlay is not nil.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		if overlay != nil {
			switch node.ID {
			case overlay.Treatment:
				opener, closer = "([", "])"
			case overlay.Outcome:
				opener, closer = "((", "))"
			}
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.ID), closer)
	}

	for _, e := range g.Edges {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		switch {
		case e.Label == "":
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
		case e.Weight < 0:
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", from, escapeLabel(e.Label), to)
		default:
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(e.Label), to)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef treatment fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef outcome fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if overlay.Treatment != "" && g.HasNode(overlay.Treatment) {
			fmt.Fprintf(&sb, "    class %s treatment;\n", sanitizeMermaidID(overlay.Treatment))
		}
		if overlay.Outcome != "" && g.HasNode(overlay.Outcome) {
			fmt.Fprintf(&sb, "    class %s outcome;\n", sanitizeMermaidID(overlay.Outcome))
		}
	}

	return sb.String()
}

var idReplacer = strings.NewReplacer(
	".", "_",
	"-", "_",
	"/", "_",
	"\\", "_",
	" ", "_",
	"\"", "_",
)

func sanitizeMermaidID(id string) string {
	return idReplacer.Replace(id)
}

// escapeLabel swaps double quotes for single ones, Mermaid has no escape for them.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
