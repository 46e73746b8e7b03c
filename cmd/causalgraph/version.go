package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/causalgraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of causalgraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "causalgraph version %s\n", strings.TrimSpace(causalgraph.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
