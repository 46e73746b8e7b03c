package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/causalgraph/pkg/adapters/file"
	"github.com/aretw0/causalgraph/pkg/adapters/memory"
	"github.com/aretw0/causalgraph/pkg/adapters/redis"
	"github.com/aretw0/causalgraph/pkg/ports"
)

// StoreOptions selects the graph store shared by the server commands.
// Redis wins over a directory; with neither, graphs live in memory.
type StoreOptions struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration

	// Dir keeps graphs as JSON files, each with a rendered .dot beside it.
	Dir string
}

// storeBackend is an opened store with its optional cross-process locker.
type storeBackend struct {
	store  ports.GraphStore
	locker ports.DistributedLocker
	close  func() error
}

// openStore connects the configured store.
func openStore(ctx context.Context, opts StoreOptions, logger *slog.Logger) (*storeBackend, error) {
	switch {
	case opts.RedisAddr != "":
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, redis.WithTTL(opts.TTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		logger.Info("Using redis graph store", "addr", opts.RedisAddr, "ttl", opts.TTL)
		return &storeBackend{
			store:  store,
			locker: redis.NewLocker(store.Client(), "causalgraph:"),
			close:  store.Close,
		}, nil

	case opts.Dir != "":
		logger.Info("Using file graph store", "dir", opts.Dir)
		return &storeBackend{store: file.New(opts.Dir, file.WithDOT(true)), close: noClose}, nil

	default:
		logger.Debug("Using in-memory graph store")
		return &storeBackend{store: memory.NewStore(), close: noClose}, nil
	}
}

func noClose() error { return nil }
