package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/causalgraph"
	"github.com/aretw0/causalgraph/internal/presentation/tui"
	api "github.com/aretw0/causalgraph/pkg/adapters/http"
	"github.com/aretw0/causalgraph/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	StoreOptions
	LogOptions
	Port      int
	Threshold float64
}

// NewServeHandler builds the HTTP API over the configured store.
// The returned function releases the store.
func NewServeHandler(ctx context.Context, opts ServeOptions) (http.Handler, func() error, error) {
	logger := createLogger(opts.LogOptions)
	backend, err := openStore(ctx, opts.StoreOptions, logger)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := []api.Option{
		api.WithMetrics(observability.NewCollector("causalgraph")),
		api.WithThreshold(opts.Threshold),
		api.WithLogger(logger),
	}
	if backend.locker != nil {
		handlerOpts = append(handlerOpts, api.WithLocker(backend.locker, 0))
	}
	return api.NewHandler(backend.store, handlerOpts...), backend.close, nil
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, streams IOStreams, opts ServeOptions) error {
	handler, closeStore, err := NewServeHandler(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if isTerminal(streams.Err) {
		tui.PrintBanner(streams.Err, causalgraph.Version)
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(streams.Err, "Listening on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		printSystemMessage(streams.Err, "Server stopped gracefully")
		return nil
	}
}
