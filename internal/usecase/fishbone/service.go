package fishbone

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domfish "github.com/learnora/learnora/internal/domain/fishbone"
	logpkg "github.com/learnora/learnora/internal/logger"
	"github.com/learnora/learnora/internal/metrics"
)

// Service answers fishbone queries: retrieval followed by Build.
type Service struct {
	retriever Retriever
}

// New creates a fishbone service.
func New(retriever Retriever) *Service {
	return &Service{retriever: retriever}
}

// Fishbone retrieves k candidates for query and splits them into lanes.
// Retrieval errors are returned unchanged apart from wrapping.
func (s *Service) Fishbone(ctx context.Context, query string, k int) (domfish.Result, error) {
	found, err := s.retriever.Search(ctx, query, k)
	if err != nil {
		return domfish.Result{}, fmt.Errorf("retrieve: %w", err)
	}
	if len(found) == 0 {
		return domfish.Empty(query), nil
	}

	res := Build(query, found)
	metrics.ObserveFishbone(res.TotalArticles, res.TotalVideos)

	logpkg.FromContext(ctx).Debug("Fishbone built",
		zap.Int("retrieved", len(found)),
		zap.Int("articles", res.TotalArticles),
		zap.Int("videos", res.TotalVideos),
	)
	return res, nil
}
