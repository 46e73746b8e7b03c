package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/topology"
)

// DefaultAlpha is the significance level used to flag estimates.
const DefaultAlpha = 0.05

// ReportOptions controls GenerateReport.
type ReportOptions struct {
	Overlay   *GraphOverlay
	Precision int
	// Target is the single-line description handed to the estimator, shown verbatim.
	Target string
}

// GenerateReport produces a Markdown summary of an analysis: the graph as a
// Mermaid block, an edge table and its causal order, then the effect
// estimate when est is not nil.
func GenerateReport(g *domain.Graph, est *domain.Estimate, opts ReportOptions) string {
	var sb strings.Builder

	title := g.Name
	if title == "" {
		title = "Causal graph"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d variables, %d edges.\n\n", len(g.Nodes), len(g.Edges))

	sb.WriteString("```mermaid\n")
	sb.WriteString(GenerateMermaid(g, opts.Overlay))
	sb.WriteString("```\n\n")

	if len(g.Edges) > 0 {
		sb.WriteString("| Cause | Effect | Coefficient |\n")
		sb.WriteString("|---|---|---:|\n")
		for _, e := range g.Edges {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", cell(e.From), cell(e.To), formatCoef(e, opts.Precision))
		}
		sb.WriteString("\n")
	}

	structure := topology.Analyze(g)
	if structure.Acyclic() {
		fmt.Fprintf(&sb, "Causal order: %s.\n\n", strings.Join(structure.Order, ", "))
	} else {
		sb.WriteString("> **Warning:** the graph is not acyclic. Backdoor adjustment assumes a DAG.\n")
		for _, c := range structure.Cycles {
			fmt.Fprintf(&sb, "> - cycle through %s\n", strings.Join(c, ", "))
		}
		sb.WriteString("\n")
	}

	if opts.Target != "" {
		sb.WriteString("Estimator input:\n\n")
		fmt.Fprintf(&sb, "```dot\n%s\n```\n\n", opts.Target)
	}

	if est == nil {
		return sb.String()
	}

	sb.WriteString("## Effect estimate\n\n")
	if opts.Overlay != nil && opts.Overlay.Treatment != "" {
		fmt.Fprintf(&sb, "Effect of **%s** on **%s**", opts.Overlay.Treatment, opts.Overlay.Outcome)
		if est.Method != "" {
			fmt.Fprintf(&sb, " (`%s`)", est.Method)
		}
		sb.WriteString(".\n\n")
	}

	p := opts.Precision
	fmt.Fprintf(&sb, "- Estimate: %s\n", strconv.FormatFloat(est.Value, 'f', p, 64))
	fmt.Fprintf(&sb, "- 95%% CI: [%s, %s]\n",
		strconv.FormatFloat(est.CILow, 'f', p, 64),
		strconv.FormatFloat(est.CIHigh, 'f', p, 64))
	fmt.Fprintf(&sb, "- p-value: %s\n", strconv.FormatFloat(est.PValue, 'g', 3, 64))
	if est.Significant(DefaultAlpha) {
		fmt.Fprintf(&sb, "- Significant at %v\n", DefaultAlpha)
	} else {
		fmt.Fprintf(&sb, "- Not significant at %v\n", DefaultAlpha)
	}
	return sb.String()
}

func formatCoef(e domain.Edge, precision int) string {
	if e.Label == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(e.Label, 64); err != nil {
		return cell(e.Label)
	}
	return strconv.FormatFloat(e.Weight, 'f', precision, 64)
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
