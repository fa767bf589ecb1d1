package fishbone

import (
	"context"

	"github.com/learnora/learnora/internal/domain/resource"
)

// Retriever returns up to k resources for a query, most relevant first.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]resource.Resource, error)
}
