package main

import (
	"context"

	"github.com/aretw0/causalgraph/internal/cli"
	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run discovery, graph building and effect estimation",
	Long: `Loads an analysis file (YAML or JSON), runs the configured discovery tool,
builds and normalizes the graph, and hands it to the estimation tool.

Any field can be overridden with --set, e.g. --set discovery.algorithm=pc --set seed=7.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.AnalyzeOptions{}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.Overrides, _ = cmd.Flags().GetStringArray("set")
		opts.Output, _ = cmd.Flags().GetString("output")
		opts.Width, _ = cmd.Flags().GetInt("width")
		opts.LogOptions = logOptions(cmd)
		opts.StoreDir, _ = cmd.Flags().GetString("store-dir")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Analyze(ctx, streams(cmd), opts)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("config", "c", "analysis.yaml", "Analysis file (YAML or JSON)")
	analyzeCmd.Flags().StringArray("set", nil, "Override a configuration key (key=value), repeatable")
	analyzeCmd.Flags().StringP("output", "o", cli.OutputReport, "Output: report, dot, target, mermaid or json")
	analyzeCmd.Flags().Int("width", 100, "Word wrap of the rendered report")
	analyzeCmd.Flags().String("store-dir", "", "Keep the graph as JSON and DOT files in this directory")
}
