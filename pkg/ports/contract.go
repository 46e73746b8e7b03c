package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore implementation
// adheres to the defined interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	name := "contract-test-graph-" + time.Now().Format("20060102150405")

	sample := func() *domain.Graph {
		g := domain.NewGraph(name)
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddEdge(domain.NewEdge("b", "a", 0.5))
		g.AddEdge(domain.NewEdge("a", "b", 0.02))
		return g
	}

	t.Run("Save and Load", func(t *testing.T) {
		g := sample()
		require.NoError(t, store.Save(ctx, name, g), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, g.Labels(), loaded.Labels())
		require.Len(t, loaded.Edges, 2)
		assert.Equal(t, "0.5", loaded.Edges[0].Label)
		assert.Equal(t, 0.02, loaded.Edges[1].Weight)
		assert.Equal(t, g.Matrix(), loaded.Matrix())
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample()))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		loaded.AddNode("mutated")

		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.False(t, again.HasNode("mutated"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample()))

		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound, "Load after Delete should return ErrGraphNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id1, sample()))
		require.NoError(t, store.Save(ctx, id2, sample()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
