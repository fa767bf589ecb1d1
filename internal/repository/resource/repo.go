package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnora/learnora/internal/db"
	domres "github.com/learnora/learnora/internal/domain/resource"
)

// store is the consumer interface for resource writes and index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	UpsertVectors(ctx context.Context, def *db.IndexDefinition, records []db.VectorRecord) error
}

// Repo manages the resource index and its records.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a resource repository.
func New(s store, hnsw HNSWConfig) *Repo {
	if hnsw.M <= 0 {
		hnsw.M = DefaultHNSW.M
	}
	if hnsw.EFConstruct <= 0 {
		hnsw.EFConstruct = DefaultHNSW.EFConstruct
	}
	return &Repo{store: s, hnsw: hnsw}
}

// EnsureIndex creates the resource index for vectors of size dim.
// With recreate the existing index is dropped first; otherwise an existing index is kept.
func (r *Repo) EnsureIndex(ctx context.Context, dim int, recreate bool) error {
	def, err := buildIndex(dim, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if recreate {
		if err := r.store.DropIndex(ctx, IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index %s: %w", IndexName, err)
		}
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// IndexReady reports whether the resource index exists.
func (r *Repo) IndexReady(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return false, fmt.Errorf("index info %s: %w", IndexName, err)
	}
	return ok, nil
}

// Upsert stores resources with their embeddings. vectors[i] belongs to resources[i].
func (r *Repo) Upsert(ctx context.Context, resources []domres.Resource, vectors [][]float32) error {
	if len(resources) != len(vectors) {
		return fmt.Errorf("upsert: %d resources but %d vectors", len(resources), len(vectors))
	}
	if len(resources) == 0 {
		return nil
	}

	def, err := buildIndex(len(vectors[0]), r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	records := make([]db.VectorRecord, len(resources))
	for i, res := range resources {
		records[i] = db.VectorRecord{
			Key:    Key(res.ID()),
			Fields: resourceToHash(res),
			Vector: vectors[i],
		}
	}

	if err := r.store.UpsertVectors(ctx, def, records); err != nil {
		return fmt.Errorf("upsert %d resources: %w", len(records), err)
	}
	return nil
}
