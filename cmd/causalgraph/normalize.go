package main

import (
	"github.com/aretw0/causalgraph/internal/cli"
	"github.com/spf13/cobra"
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize [FILE]",
	Short: "Convert a DOT graph to the single-line dialect",
	Long: `Parses a DOT description and re-emits it as one line, statements separated by ';'.
Reads stdin when FILE is omitted. Malformed input fails with its line and column.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return cli.Normalize(streams(cmd), path)
	},
}

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff OLD.dot NEW.dot",
	Short: "Compare two DOT graphs",
	Long:  `Prints the added, removed, reversed and relabelled edges between two graphs as JSON.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Diff(streams(cmd), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(diffCmd)
}
