package ports

import (
	"context"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// GraphStore defines the interface for persisting built graphs.
type GraphStore interface {
	// Save persists g under name, replacing any previous graph with that name.
	Save(ctx context.Context, name string, g *domain.Graph) error

	// Load retrieves the graph stored under name.
	// Returns domain.ErrGraphNotFound if there is none.
	Load(ctx context.Context, name string) (*domain.Graph, error)

	// Delete removes the graph. Deleting a missing graph is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of the stored graphs.
	List(ctx context.Context) ([]string, error)
}
