package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/domain"
	domres "github.com/learnora/learnora/internal/domain/resource"
	logpkg "github.com/learnora/learnora/internal/logger"
)

// DefaultBatchSize is the number of resources embedded per provider call.
const DefaultBatchSize = 64

// Options tunes an ingest run.
type Options struct {
	BatchSize int
	// Recreate drops the existing index before writing.
	Recreate bool
}

// Stats summarizes an ingest run.
type Stats struct {
	Resources int
	Batches   int
	Tokens    int
	Dimension int
}

// Service embeds resources and writes them into the vector index.
type Service struct {
	writer Writer
	embed  Embedder
}

// New creates an ingest service.
func New(writer Writer, embed Embedder) *Service {
	return &Service{writer: writer, embed: embed}
}

// Run embeds resources batch by batch and upserts them. The index is created
// on the first batch, once the vector dimension is known.
func (s *Service) Run(ctx context.Context, resources []domres.Resource, opts Options) (Stats, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	log := logpkg.FromContext(ctx)

	var stats Stats
	for start := 0; start < len(resources); start += batchSize {
		end := min(start+batchSize, len(resources))
		batch := resources[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = EmbeddingText(r)
		}

		res, err := domain.EmbedAll(ctx, s.embed, texts)
		if err != nil {
			return stats, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(res.Embeddings) != len(batch) {
			return stats, fmt.Errorf("embed batch at %d: got %d vectors for %d resources: %w",
				start, len(res.Embeddings), len(batch), domain.ErrEmbeddingProviderError)
		}

		if stats.Dimension == 0 {
			stats.Dimension = len(res.Embeddings[0])
			if err := s.writer.EnsureIndex(ctx, stats.Dimension, opts.Recreate); err != nil {
				return stats, fmt.Errorf("ensure index: %w", err)
			}
		}
		for i, v := range res.Embeddings {
			if len(v) != stats.Dimension {
				return stats, fmt.Errorf("resource %s: %w", batch[i].ID(), errDimensionMismatch(len(v), stats.Dimension))
			}
		}

		if err := s.writer.Upsert(ctx, batch, res.Embeddings); err != nil {
			return stats, fmt.Errorf("upsert batch at %d: %w", start, err)
		}

		stats.Resources += len(batch)
		stats.Batches++
		stats.Tokens += res.TotalTokens
		log.Debug("Ingested batch",
			zap.Int("offset", start),
			zap.Int("size", len(batch)),
			zap.Int("total", stats.Resources),
		)
	}
	return stats, nil
}

var errVectorDimension = errors.New("vector dimension mismatch")

func errDimensionMismatch(got, want int) error {
	return fmt.Errorf("%w: got %d, want %d", errVectorDimension, got, want)
}
