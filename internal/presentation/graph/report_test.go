package graph_test

import (
	"testing"

	"github.com/aretw0/causalgraph/internal/presentation/graph"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateReport(t *testing.T) {
	est := &domain.Estimate{
		Method: domain.DefaultMethod,
		Value:  0.6345,
		CILow:  0.5,
		CIHigh: 0.7712,
		PValue: 0.0004,
	}

	out := graph.GenerateReport(sample(), est, graph.ReportOptions{
		Overlay:   &graph.GraphOverlay{Treatment: "smoking", Outcome: "cancer"},
		Precision: 2,
		Target:    "digraph smoking {smoking}",
	})

	assert.Contains(t, out, "# smoking\n")
	assert.Contains(t, out, "3 variables, 3 edges.")
	assert.Contains(t, out, "```mermaid\ngraph LR\n")
	assert.Contains(t, out, "| smoking | tar-level | 0.90 |")
	assert.Contains(t, out, "| cancer | smoking | -0.25 |")
	assert.Contains(t, out, "> - cycle through smoking, tar-level, cancer\n")
	assert.Contains(t, out, "```dot\ndigraph smoking {smoking}\n```")
	assert.Contains(t, out, "Effect of **smoking** on **cancer** (`backdoor.linear_regression`).")
	assert.Contains(t, out, "- Estimate: 0.63\n")
	assert.Contains(t, out, "- 95% CI: [0.50, 0.77]\n")
	assert.Contains(t, out, "- p-value: 0.0004\n")
	assert.Contains(t, out, "- Significant at 0.05")
}

func TestGenerateReport_GraphOnly(t *testing.T) {
	g := domain.NewGraph("")
	g.AddNode("x0")

	out := graph.GenerateReport(g, nil, graph.ReportOptions{})
	assert.Contains(t, out, "# Causal graph\n")
	assert.Contains(t, out, "1 variables, 0 edges.")
	assert.NotContains(t, out, "| Cause |")
	assert.Contains(t, out, "Causal order: x0.")
	assert.NotContains(t, out, "Effect estimate")
}

func TestGenerateReport_NotSignificant(t *testing.T) {
	out := graph.GenerateReport(sample(), &domain.Estimate{Value: 0.1, PValue: 0.3}, graph.ReportOptions{Precision: 1})
	assert.Contains(t, out, "- Not significant at 0.05")
	assert.NotContains(t, out, "Effect of")
}
