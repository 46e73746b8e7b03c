// Package catalog serializes access to named graphs held in a GraphStore.
//
// Stores are safe for concurrent calls, but a load followed by a save is not
// atomic. The Catalog holds a per-name lock around such sequences, optionally
// backed by a DistributedLocker when several processes share one store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Catalog orchestrates graph access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Catalog struct {
	store ports.GraphStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Catalog.
type Option func(*Catalog)

// WithLocker enables distributed locking. A zero ttl selects DefaultLockTTL.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(c *Catalog) {
		c.locker = locker
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// New creates a Catalog over store.
func New(store ports.GraphStore, opts ...Option) *Catalog {
	c := &Catalog{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(name) after unlocking.
func (c *Catalog) acquire(name string) *lockEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.locks[name]
	if !exists {
		entry = &lockEntry{}
		c.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (c *Catalog) release(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.locks[name]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(c.locks, name)
	}
}

// Load retrieves a graph.
func (c *Catalog) Load(ctx context.Context, name string) (*domain.Graph, error) {
	var g *domain.Graph
	err := c.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		g, err = c.store.Load(ctx, name)
		return err
	})
	return g, err
}

// Save stores g under name.
func (c *Catalog) Save(ctx context.Context, name string, g *domain.Graph) error {
	return c.WithLock(ctx, name, func(ctx context.Context) error {
		return c.store.Save(ctx, name, g)
	})
}

// Replace stores g under name and returns the graph it replaced, or nil when
// the name was free.
func (c *Catalog) Replace(ctx context.Context, name string, g *domain.Graph) (*domain.Graph, error) {
	var prev *domain.Graph
	err := c.WithLock(ctx, name, func(ctx context.Context) error {
		old, err := c.store.Load(ctx, name)
		switch {
		case err == nil:
			prev = old
		case !errors.Is(err, domain.ErrGraphNotFound):
			return fmt.Errorf("failed to check graph existence: %w", err)
		}
		return c.store.Save(ctx, name, g)
	})
	return prev, err
}

// Delete removes a graph.
func (c *Catalog) Delete(ctx context.Context, name string) error {
	return c.WithLock(ctx, name, func(ctx context.Context) error {
		return c.store.Delete(ctx, name)
	})
}

// List delegates to the store.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	return c.store.List(ctx)
}

// Store returns the underlying graph store.
func (c *Catalog) Store() ports.GraphStore {
	return c.store
}

// WithLock executes fn while holding the lock for name.
func (c *Catalog) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := c.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		c.release(name)
	}()

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, name, c.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				c.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"graph", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
