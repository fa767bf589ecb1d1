package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/domain"
	"github.com/learnora/learnora/internal/domain/resource"
	logpkg "github.com/learnora/learnora/internal/logger"
	"github.com/learnora/learnora/internal/metrics"
)

// Service is the retrieval adapter: it embeds the query and runs KNN over the resource index.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search returns at most k resources ordered by decreasing similarity.
// An empty index match is not an error.
func (s *Service) Search(ctx context.Context, query string, k int) (_ []resource.Resource, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidQuery)
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidQuery)
	}

	start := time.Now()
	var found []resource.Resource
	defer func() { metrics.ObserveRetrieval(start, len(found), err) }()

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	found, err = s.repo.SearchKNN(ctx, emb.Embedding, k)
	if err != nil {
		logpkg.FromContext(ctx).Warn("KNN search failed", zap.Error(err))
		return nil, fmt.Errorf("search knn: %w", err)
	}
	if len(found) > k {
		found = found[:k]
	}

	logpkg.FromContext(ctx).Debug("Retrieval completed",
		zap.Int("k", k),
		zap.Int("found", len(found)),
		zap.Int("query_tokens", emb.TotalTokens),
	)
	return found, nil
}
