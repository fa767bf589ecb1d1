package ingest

import (
	"context"

	"github.com/learnora/learnora/internal/domain"
	domres "github.com/learnora/learnora/internal/domain/resource"
)

// Writer stores resources and manages the index they are searched through.
type Writer interface {
	EnsureIndex(ctx context.Context, dim int, recreate bool) error
	Upsert(ctx context.Context, resources []domres.Resource, vectors [][]float32) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
