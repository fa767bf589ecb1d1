package chi

import (
	"context"

	"github.com/learnora/learnora/internal/domain/fishbone"
	"github.com/learnora/learnora/internal/domain/resource"
	"github.com/learnora/learnora/internal/domain/roadmap"
	healthuc "github.com/learnora/learnora/internal/usecase/health"
)

// Searcher is the retrieval adapter.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]resource.Resource, error)
}

// RoadmapBuilder retrieves and structures a roadmap.
type RoadmapBuilder interface {
	Roadmap(ctx context.Context, query string, k, maxSteps int) ([]roadmap.Step, error)
}

// FishboneBuilder retrieves and structures a fishbone view.
type FishboneBuilder interface {
	Fishbone(ctx context.Context, query string, k int) (fishbone.Result, error)
}

// HealthChecker aggregates dependency checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
