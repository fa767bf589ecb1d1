package roadmap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/domain"
	domroad "github.com/learnora/learnora/internal/domain/roadmap"
	logpkg "github.com/learnora/learnora/internal/logger"
	"github.com/learnora/learnora/internal/metrics"
)

// Service answers roadmap queries: retrieval followed by Build.
type Service struct {
	retriever Retriever
}

// New creates a roadmap service.
func New(retriever Retriever) *Service {
	return &Service{retriever: retriever}
}

// Roadmap retrieves k candidates for query and orders them into at most maxSteps steps.
// An empty retrieval yields an empty, non-nil step list.
func (s *Service) Roadmap(ctx context.Context, query string, k, maxSteps int) ([]domroad.Step, error) {
	if maxSteps < 1 {
		return nil, fmt.Errorf("max steps %d: %w", maxSteps, domain.ErrInvalidMaxSteps)
	}

	found, err := s.retriever.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(found) == 0 {
		return []domroad.Step{}, nil
	}

	steps, padded, err := build(query, found, maxSteps)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRoadmap(len(steps), padded)

	logpkg.FromContext(ctx).Debug("Roadmap built",
		zap.Int("retrieved", len(found)),
		zap.Int("steps", len(steps)),
		zap.Int("padded", padded),
	)
	return steps, nil
}
