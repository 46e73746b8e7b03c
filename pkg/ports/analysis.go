package ports

import (
	"context"

	"github.com/aretw0/causalgraph/pkg/domain"
)

// Discoverer runs a causal structure search.
type Discoverer interface {
	// Discover returns the weighted adjacency matrix found in req.Dataset.
	// The matrix follows the domain.Matrix convention: entry [r][c] is the edge c -> r.
	Discover(ctx context.Context, req domain.DiscoveryRequest) (*domain.Discovery, error)
}

// Estimator identifies and estimates a causal effect.
type Estimator interface {
	// Estimate receives the graph in the single-line dialect through req.Graph.
	Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error)
}
