package main

import (
	"context"
	"time"

	"github.com/aretw0/causalgraph/internal/cli"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the graph API: build graphs from matrices, fetch them in any format,
normalize DOT text, stream changes over SSE and expose Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{StoreOptions: storeOptions(cmd)}
		opts.Port, _ = cmd.Flags().GetInt("port")
		opts.Threshold, _ = cmd.Flags().GetFloat64("threshold")
		opts.LogOptions = logOptions(cmd)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Serve(ctx, streams(cmd), opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Float64("threshold", domain.DefaultThreshold, "Default edge threshold")
	addStoreFlags(serveCmd)
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("redis", "", "Redis address for graph storage (default in-memory)")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Expiry of graphs stored in redis (0 keeps them forever)")
	cmd.Flags().String("store-dir", "", "Keep graphs as files in this directory (ignored with --redis)")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	var opts cli.StoreOptions
	opts.RedisAddr, _ = cmd.Flags().GetString("redis")
	opts.RedisPassword, _ = cmd.Flags().GetString("redis-password")
	opts.RedisDB, _ = cmd.Flags().GetInt("redis-db")
	opts.TTL, _ = cmd.Flags().GetDuration("ttl")
	opts.Dir, _ = cmd.Flags().GetString("store-dir")
	return opts
}
