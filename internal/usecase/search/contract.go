package search

import (
	"context"

	"github.com/learnora/learnora/internal/domain"
	"github.com/learnora/learnora/internal/domain/resource"
)

// Repository runs nearest-neighbour lookups over the resource index.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]resource.Resource, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
