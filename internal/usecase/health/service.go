package health

import (
	"context"
	"errors"

	"go.uber.org/zap"

	logpkg "github.com/learnora/learnora/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that some dependency is failing but the store answers.
	Degraded Status = "degraded"
	// Unhealthy indicates that the vector store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates the resource index has not been ingested yet.
	CheckMissing CheckResult = "missing"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

var errIndexMissing = errors.New("index missing")

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexChecker
	embedding EmbeddingChecker
}

// New creates a Service. index and embedding can be nil.
func New(db DBPinger, index IndexChecker, embedding EmbeddingChecker) *Service {
	return &Service{db: db, index: index, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	log := logpkg.FromContext(ctx)
	checks := make(map[string]CheckResult)

	record := func(name string, err error) {
		switch {
		case err == nil:
			checks[name] = CheckOK
		case errors.Is(err, errIndexMissing):
			checks[name] = CheckMissing
		default:
			checks[name] = CheckError
			log.Warn("Health check failed", zap.String("component", name), zap.Error(err))
		}
	}

	dbErr := s.db.Ping(ctx)
	record("database", dbErr)

	if s.index != nil && dbErr == nil {
		ready, err := s.index.IndexReady(ctx)
		if err == nil && !ready {
			err = errIndexMissing
		}
		record("index", err)
	}

	if s.embedding != nil {
		record("embedding", s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	if dbErr != nil {
		status = Unhealthy
	} else {
		for _, v := range checks {
			if v != CheckOK {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks}
}
