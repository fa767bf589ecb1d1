package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/bootstrap"
	"github.com/learnora/learnora/internal/config"
	"github.com/learnora/learnora/internal/domain"
	logpkg "github.com/learnora/learnora/internal/logger"
	"github.com/learnora/learnora/internal/metrics"
	resourcerepo "github.com/learnora/learnora/internal/repository/resource"
	searchrepo "github.com/learnora/learnora/internal/repository/search"
	chiTransport "github.com/learnora/learnora/internal/transport/chi"
	fishboneuc "github.com/learnora/learnora/internal/usecase/fishbone"
	healthuc "github.com/learnora/learnora/internal/usecase/health"
	roadmapuc "github.com/learnora/learnora/internal/usecase/roadmap"
	searchuc "github.com/learnora/learnora/internal/usecase/search"
	"github.com/learnora/learnora/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(logpkg.Config{
		Env:     env,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: "learnora",
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting Learnora API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Register metrics explicitly (no init()).
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()
	metrics.RegisterHTTPMetrics()

	queryEmbedder := bootstrap.BuildEmbedder(cfg, bootstrap.EmbedderOptions{
		Instruction: cfg.Embedding.QueryInstruction,
		Cache:       bootstrap.KVCache(store),
	}, logger)

	resources := resourcerepo.New(store, resourcerepo.HNSWConfig{
		M:           cfg.Database.HNSWM,
		EFConstruct: cfg.Database.HNSWEFConstruct,
	})
	searchSvc := searchuc.New(searchrepo.New(store), queryEmbedder)
	roadmapSvc := roadmapuc.New(searchSvc)
	fishboneSvc := fishboneuc.New(searchSvc)
	healthSvc := healthuc.New(store, resources, embeddingHealth{queryEmbedder})

	server := chiTransport.NewServer(searchSvc, roadmapSvc, fishboneSvc, healthSvc,
		chiTransport.Defaults{
			SearchK:      cfg.Retrieval.SearchK,
			RoadmapK:     cfg.Retrieval.RoadmapK,
			RoadmapSteps: cfg.Retrieval.RoadmapSteps,
			FishboneK:    cfg.Retrieval.FishboneK,
		},
		chiTransport.Limits{
			MaxK:     cfg.Retrieval.MaxK,
			MaxSteps: cfg.Retrieval.MaxSteps,
		},
		logger,
	)
	handler := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		CORS: chiTransport.CORSOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         time.Duration(cfg.CORS.MaxAgeSec) * time.Second,
		},
		RateLimit: chiTransport.RateLimitOptions{
			Requests: cfg.RateLimit.Requests,
			Window:   time.Duration(cfg.RateLimit.WindowSec) * time.Second,
		},
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealth exposes the provider check of the embedder chain.
type embeddingHealth struct {
	embedder domain.Embedder
}

func (h embeddingHealth) HealthCheck(ctx context.Context) error {
	hc, ok := h.embedder.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}
