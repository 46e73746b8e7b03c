package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/causalgraph/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// MCPOptions contains the configuration for the mcp command.
type MCPOptions struct {
	StoreOptions
	LogOptions
	Transport string
	Port      int
	Threshold float64
}

// ServeMCP exposes the graph tools to agents until ctx is cancelled or stdin closes.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	logger := createLogger(opts.LogOptions)
	backend, err := openStore(ctx, opts.StoreOptions, logger)
	if err != nil {
		return err
	}
	defer backend.close()

	srv := mcp.NewServer(backend.store, mcp.WithThreshold(opts.Threshold), mcp.WithLogger(logger))

	switch opts.Transport {
	case TransportStdio, "":
		logger.Info("Starting MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		logger.Info("Starting MCP server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q: supported are %s and %s", opts.Transport, TransportStdio, TransportSSE)
	}
}
