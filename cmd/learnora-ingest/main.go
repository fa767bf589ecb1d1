package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/bootstrap"
	"github.com/learnora/learnora/internal/config"
	logpkg "github.com/learnora/learnora/internal/logger"
	resourcerepo "github.com/learnora/learnora/internal/repository/resource"
	ingestuc "github.com/learnora/learnora/internal/usecase/ingest"
	"github.com/learnora/learnora/internal/version"
)

// CLI is the ingest command line.
type CLI struct {
	Metadata  string `help:"Path to the metadata dataset (JSON array)." default:"datasets/learnora_metadata.json"`
	BatchSize int    `help:"Resources embedded per provider call." default:"64" name:"batch-size"`
	Recreate  bool   `help:"Drop the resource index before writing."`
	Env       string `help:"Config environment (config/<env>.yaml)." env:"ENV" default:"local"`
	Config    string `help:"Explicit config file; overrides --env." type:"path"`

	Version kong.VersionFlag `help:"Print build version and exit."`
}

// Run loads the dataset, embeds it and writes it into the vector store.
func (c *CLI) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, err := logpkg.New(logpkg.Config{
		Env:     c.Env,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: "learnora-ingest",
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	f, err := os.Open(filepath.Clean(c.Metadata))
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	resources, err := ingestuc.LoadDataset(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	logger.Info("Loaded dataset", zap.String("path", c.Metadata), zap.Int("resources", len(resources)))

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	// Documents are embedded without the query instruction and never cached.
	embedder := bootstrap.BuildEmbedder(cfg, bootstrap.EmbedderOptions{}, logger)
	writer := resourcerepo.New(store, resourcerepo.HNSWConfig{
		M:           cfg.Database.HNSWM,
		EFConstruct: cfg.Database.HNSWEFConstruct,
	})

	start := time.Now()
	stats, err := ingestuc.New(writer, embedder).Run(ctx, resources, ingestuc.Options{
		BatchSize: c.BatchSize,
		Recreate:  c.Recreate,
	})
	if err != nil {
		logger.Error("Ingest failed", zap.Int("written", stats.Resources), zap.Error(err))
		return err
	}

	logger.Info("Ingest completed",
		zap.Int("resources", stats.Resources),
		zap.Int("batches", stats.Batches),
		zap.Int("tokens", stats.Tokens),
		zap.Int("dimension", stats.Dimension),
		zap.String("index", resourcerepo.IndexName),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (c *CLI) loadConfig() (config.Config, error) {
	if c.Config != "" {
		return config.LoadFile(c.Config)
	}
	return config.Load(c.Env)
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("learnora-ingest"),
		kong.Description("Embed the Learnora metadata dataset and load it into the vector index."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	kctx.FatalIfErrorf(kctx.Run())
}
