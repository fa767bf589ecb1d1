package db

import (
	"context"
	"time"
)

// Store is the vector store facade shared by the Redis and Postgres backends.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	IndexManager
	Searcher
	VectorWriter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides expiring key-value operations. Only some backends implement it.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides vector index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs nearest-neighbour queries over an index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// VectorRecord is one stored item: scalar fields plus its embedding.
type VectorRecord struct {
	Key    string
	Fields map[string]string
	Vector []float32
}

// VectorWriter stores records so that they become searchable through def.
type VectorWriter interface {
	UpsertVectors(ctx context.Context, def *IndexDefinition, records []VectorRecord) error
}
