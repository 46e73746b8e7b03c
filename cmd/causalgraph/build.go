package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/causalgraph/internal/cli"
	"github.com/aretw0/causalgraph/internal/presentation/graph"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/spf13/cobra"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [MATRIX.csv]",
	Short: "Build a graph from an adjacency matrix",
	Long: `Reads a square adjacency CSV (from a file or stdin) and prints the causal graph.
Entry [r][c] is the coefficient of the edge from column c to row r. A non-numeric
first row is used as node labels.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.BuildOptions{}
		if len(args) > 0 {
			opts.MatrixPath = args[0]
		}
		labels, _ := cmd.Flags().GetStringSlice("labels")
		opts.Labels = labels
		opts.Threshold, _ = cmd.Flags().GetFloat64("threshold")
		opts.Name, _ = cmd.Flags().GetString("name")
		opts.Format, _ = cmd.Flags().GetString("format")
		opts.Treatment, _ = cmd.Flags().GetString("treatment")
		opts.Outcome, _ = cmd.Flags().GetString("outcome")
		opts.Summary, _ = cmd.Flags().GetBool("summary")

		return cli.Build(streams(cmd), opts)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringSlice("labels", nil, "Node labels, comma separated (default x0, x1, ...)")
	buildCmd.Flags().Float64("threshold", domain.DefaultThreshold, "Absolute coefficient at or below which no edge is drawn")
	buildCmd.Flags().String("name", "", "Graph ID")
	buildCmd.Flags().StringP("format", "f", graph.FormatDOT, fmt.Sprintf("Output format (%s)", strings.Join(graph.Formats, "|")))
	buildCmd.Flags().String("treatment", "", "Highlight the treatment node (mermaid)")
	buildCmd.Flags().String("outcome", "", "Highlight the outcome node (mermaid)")
	buildCmd.Flags().Bool("summary", false, "Print a coloured edge list on stderr")
}
