package main

import (
	"fmt"
	"os"

	"github.com/aretw0/causalgraph/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "causalgraph",
	Short: "causalgraph turns discovered causal structures into graph descriptions",
	Long: `causalgraph converts the weighted adjacency matrix produced by causal discovery
(PC, GES, LiNGAM) into a DOT graph, normalizes it to the single-line dialect
expected by effect estimation tools, and drives both through external processes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("log-format", "text", "Log record encoding: text or json")
}

func logOptions(cmd *cobra.Command) cli.LogOptions {
	var opts cli.LogOptions
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("log-format")
	opts.JSON = format == "json"
	return opts
}

// streams binds a command to cobra's configurable streams, which default to the process ones.
func streams(cmd *cobra.Command) cli.IOStreams {
	return cli.IOStreams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
}
