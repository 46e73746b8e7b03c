package catalog_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/causalgraph/pkg/adapters/memory"
	"github.com/aretw0/causalgraph/pkg/adapters/redis"
	"github.com/aretw0/causalgraph/pkg/catalog"
	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates latency to provoke race conditions if locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Load(ctx context.Context, name string) (*domain.Graph, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, name)
}

func (s slowStore) Save(ctx context.Context, name string, g *domain.Graph) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, name, g)
}

func TestCatalog_Contract(t *testing.T) {
	ports.RunGraphStoreContract(t, catalog.New(memory.NewStore()))
}

func TestCatalog_ReplaceIsAtomic(t *testing.T) {
	c := catalog.New(slowStore{memory.NewStore()})
	ctx := context.Background()

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev, err := c.Replace(ctx, "race", domain.NewGraph("race"))
			assert.NoError(t, err)
			if prev == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load(), "exactly one writer must see the name as free")
}

func TestCatalog_ReplaceReturnsPrevious(t *testing.T) {
	c := catalog.New(memory.NewStore())
	ctx := context.Background()

	first := domain.NewGraph("g")
	first.AddNode("a")
	prev, err := c.Replace(ctx, "g", first)
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = c.Replace(ctx, "g", domain.NewGraph("g"))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, []string{"a"}, prev.Labels())
}

func TestCatalog_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := redis.NewLocker(client, "test:")
	c := catalog.New(memory.NewStore(), catalog.WithLocker(locker, time.Second))
	ctx := context.Background()

	err := c.WithLock(ctx, "g", func(ctx context.Context) error {
		assert.True(t, mr.Exists("test:lock:g"), "lock key must be held inside the critical section")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:g"), "lock key must be released")
}
