// Package bootstrap assembles the adapters shared by the API server and the ingest tool.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/config"
	"github.com/learnora/learnora/internal/db"
	dbPostgres "github.com/learnora/learnora/internal/db/postgres"
	dbRedis "github.com/learnora/learnora/internal/db/redis"
	"github.com/learnora/learnora/internal/domain"
	"github.com/learnora/learnora/internal/metrics"
	"github.com/learnora/learnora/internal/repository/embcache"
	openaiEmb "github.com/learnora/learnora/internal/transport/openai"
	embeddinguc "github.com/learnora/learnora/internal/usecase/embedding"
)

// OpenStore connects to the configured vector store and waits until it answers.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case "postgres":
		store, err = dbPostgres.NewStore(ctx, dbPostgres.Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

// EmbedderOptions selects the optional layers of the embedder chain.
type EmbedderOptions struct {
	// Instruction is prepended to every text, e.g. "query: ".
	Instruction string
	// Cache stores vectors when the backend offers key-value storage. Nil disables caching.
	Cache db.KVStore
}

// BuildEmbedder assembles the decorator chain:
// OpenAI -> Resilient -> Instrumented -> Cached -> Instruction.
func BuildEmbedder(cfg config.Config, opts EmbedderOptions, logger *zap.Logger) domain.Embedder {
	emb := cfg.Embedding
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     emb.APIKey,
		BaseURL:    emb.BaseURL,
		Model:      emb.Model,
		Dimensions: emb.Dimensions,
		Provider:   emb.Provider,
		Timeout:    time.Duration(emb.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	return wrapEmbedder(base, cfg, opts, logger)
}

func wrapEmbedder(base domain.Embedder, cfg config.Config, opts EmbedderOptions, logger *zap.Logger) domain.Embedder {
	res := cfg.Resilience
	var embedder domain.Embedder = embeddinguc.NewResilientEmbedder(base, cfg.Embedding.Provider,
		embeddinguc.ResilienceConfig{
			MaxAttempts:      res.MaxAttempts,
			InitialBackoff:   time.Duration(res.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:       time.Duration(res.MaxBackoffMs) * time.Millisecond,
			Multiplier:       res.Multiplier,
			BreakerEnabled:   res.BreakerOn(),
			FailureRatio:     res.FailureRatio,
			MinRequests:      res.MinRequests,
			OpenTimeout:      time.Duration(res.OpenTimeoutSec) * time.Second,
			HalfOpenMaxCalls: res.HalfOpenMaxCalls,
		}, logger)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)

	// Sits inside the instruction layer: cache keys see the prefixed text.
	if opts.Cache != nil && cfg.Embedding.CacheOn() {
		embedder = embcache.New(embedder, opts.Cache, embcache.Options{
			Model:      cfg.Embedding.Model,
			TTL:        time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
			CacheTotal: metrics.EmbeddingCacheTotal,
		}, logger)
	}

	if opts.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, opts.Instruction)
	}
	return embedder
}

// KVCache returns the store's key-value side when it has one.
func KVCache(store db.Store) db.KVStore {
	if kv, ok := store.(db.KVStore); ok {
		return kv
	}
	return nil
}
