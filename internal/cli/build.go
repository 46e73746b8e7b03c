package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/causalgraph/internal/presentation/graph"
	"github.com/aretw0/causalgraph/internal/presentation/tui"
	"github.com/aretw0/causalgraph/pkg/adjacency"
	"github.com/aretw0/causalgraph/pkg/dataset"
	"github.com/aretw0/causalgraph/pkg/domain"
)

// ErrNoInput is returned when a command expects piped input but stdin is a terminal.
var ErrNoInput = errors.New("no input: pass a file or pipe data on stdin")

// IOStreams groups the standard streams a command reads and writes.
type IOStreams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// BuildOptions contains the configuration for the build command.
type BuildOptions struct {
	// MatrixPath is the adjacency CSV. Empty or "-" reads stdin.
	MatrixPath string
	Labels     []string
	Threshold  float64
	Name       string
	Format     string
	Treatment  string
	Outcome    string

	// Summary prints a coloured edge list on the error stream.
	Summary bool
}

// Build reads an adjacency matrix and writes the graph in the requested format.
func Build(streams IOStreams, opts BuildOptions) error {
	src, err := readSource(opts.MatrixPath, streams.In)
	if err != nil {
		return err
	}
	m, header, err := dataset.ReadMatrix(strings.NewReader(src))
	if err != nil {
		return err
	}

	labels := opts.Labels
	if len(labels) == 0 {
		labels = header
	}

	g, err := adjacency.Build(m,
		adjacency.WithLabels(labels...),
		adjacency.WithThreshold(opts.Threshold),
		adjacency.WithName(opts.Name),
	)
	if err != nil {
		return err
	}

	overlay, err := newOverlay(g, opts.Treatment, opts.Outcome)
	if err != nil {
		return err
	}

	out, _, err := graph.Format(g, opts.Format, overlay)
	if err != nil {
		return err
	}
	if err := writeLine(streams.Out, out); err != nil {
		return err
	}

	if opts.Summary && streams.Err != nil {
		tui.PrintEdges(streams.Err, g)
	}
	return nil
}

// newOverlay checks that the highlighted variables are nodes of g.
func newOverlay(g *domain.Graph, treatment, outcome string) (*graph.GraphOverlay, error) {
	if treatment == "" && outcome == "" {
		return nil, nil
	}
	for _, id := range []string{treatment, outcome} {
		if id != "" && !g.HasNode(id) {
			return nil, fmt.Errorf("%q: %w", id, domain.ErrUnknownNode)
		}
	}
	return &graph.GraphOverlay{Treatment: treatment, Outcome: outcome}, nil
}

// writeLine writes s and terminates it with a newline if it lacks one.
func writeLine(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}
