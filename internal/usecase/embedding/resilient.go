package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/domain"
	"github.com/learnora/learnora/internal/metrics"
)

// ResilienceConfig controls retries and the circuit breaker around the provider.
type ResilienceConfig struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	Multiplier       float64
	BreakerEnabled   bool
	FailureRatio     float64
	MinRequests      uint32
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func (c ResilienceConfig) normalize() ResilienceConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Multiplier < 1 {
		c.Multiplier = 1
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.5
	}
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = 1
	}
	return c
}

// ResilientEmbedder retries transient provider failures with exponential backoff
// and stops calling a failing provider through a circuit breaker.
type ResilientEmbedder struct {
	inner    domain.Embedder
	provider string
	cfg      ResilienceConfig
	breaker  *gobreaker.CircuitBreaker[any]
	logger   *zap.Logger
}

// NewResilientEmbedder wraps inner with retry and, when enabled, a circuit breaker.
func NewResilientEmbedder(inner domain.Embedder, provider string, cfg ResilienceConfig, logger *zap.Logger) *ResilientEmbedder {
	r := &ResilientEmbedder{
		inner:    inner,
		provider: provider,
		cfg:      cfg.normalize(),
		logger:   logger,
	}
	if r.cfg.BreakerEnabled {
		r.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        "embedding:" + provider,
			MaxRequests: r.cfg.HalfOpenMaxCalls,
			Timeout:     r.cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < r.cfg.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= r.cfg.FailureRatio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !countsAsFailure(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.EmbeddingBreakerState.WithLabelValues(provider).Set(float64(to))
				logger.Warn("Circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
		metrics.EmbeddingBreakerState.WithLabelValues(provider).Set(float64(gobreaker.StateClosed))
	}
	return r
}

// Embed implements domain.Embedder.
func (r *ResilientEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var out domain.EmbeddingResult
	err := r.execute(ctx, "embed", func(ctx context.Context) error {
		res, err := r.inner.Embed(ctx, text)
		if err != nil {
			return err //nolint:wrapcheck // wrapped once in execute
		}
		out = res
		return nil
	})
	return out, err
}

// BatchEmbed implements domain.BatchEmbedder.
func (r *ResilientEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var out domain.BatchEmbeddingResult
	err := r.execute(ctx, "batch_embed", func(ctx context.Context) error {
		res, err := domain.EmbedAll(ctx, r.inner, texts)
		if err != nil {
			return err //nolint:wrapcheck // wrapped once in execute
		}
		out = res
		return nil
	})
	return out, err
}

// HealthCheck forwards to the inner embedder, bypassing retries.
func (r *ResilientEmbedder) HealthCheck(ctx context.Context) error {
	if r.breaker != nil && r.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("circuit open: %w", domain.ErrResourceUnavailable)
	}
	if hc, ok := r.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (r *ResilientEmbedder) execute(ctx context.Context, op string, fn func(context.Context) error) error {
	if r.breaker == nil {
		return r.retry(ctx, op, fn)
	}

	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.retry(ctx, op, fn)
	})
	if IsCircuitOpen(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrResourceUnavailable, err)
	}
	return err
}

func (r *ResilientEmbedder) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := r.cfg.InitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= r.cfg.MaxAttempts {
			return fmt.Errorf("%s after %d attempt(s): %w", op, attempt, err)
		}

		wait := min(backoff, r.cfg.MaxBackoff)
		r.logger.Warn("Retrying embedding request",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.cfg.MaxAttempts),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: %w", op, err)
			case <-timer.C:
			}
		}
		backoff = time.Duration(float64(backoff) * r.cfg.Multiplier)
	}
}

// IsCircuitOpen reports whether err was produced by an open or saturated breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// retryable: provider failures and throttling. Cancellation is final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, domain.ErrEmbeddingProviderError) || errors.Is(err, domain.ErrRateLimited)
}

// countsAsFailure excludes caller cancellation from breaker statistics.
func countsAsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}
