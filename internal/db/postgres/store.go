package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/learnora/learnora/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Postgres error codes the store translates into db sentinels.
const (
	codeUndefinedTable = "42P01"
	codeDuplicateTable = "42P07"
)

// Config holds connection parameters for a Postgres store with pgvector.
type Config struct {
	DSN      string
	MaxConns int32
}

// Store implements db.Store on Postgres: one table per index, fields as
// JSONB and the embedding as a pgvector column with an HNSW index.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a connection pool. The connection is established lazily.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// CreateIndex creates the backing table and its HNSW index in one transaction.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	stmts, err := createStatements(def)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			if pgCode(err) == codeDuplicateTable {
				return db.ErrIndexExists
			}
			return &db.Error{Op: db.OpCreateIndex, Err: err}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex drops the table backing the index, together with its rows.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE "+tableIdent(name)); err != nil {
		if pgCode(err) == codeUndefinedTable {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether the backing table exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", tableIdent(name)).Scan(&exists)
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return exists, nil
}

// UpsertVectors inserts or replaces records in one batch.
func (s *Store) UpsertVectors(ctx context.Context, def *db.IndexDefinition, records []db.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	vf, ok := def.VectorField()
	if !ok {
		return errors.New("index has no vector field")
	}

	query := upsertSQL(def.Name)
	batch := &pgx.Batch{}
	for _, rec := range records {
		if len(rec.Vector) != vf.Vector.Dim {
			return fmt.Errorf("key %q: vector has %d dimensions, index expects %d", rec.Key, len(rec.Vector), vf.Vector.Dim)
		}
		fields := rec.Fields
		if fields == nil {
			fields = map[string]string{}
		}
		batch.Queue(query, rec.Key, fields, pgvector.NewVector(rec.Vector))
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		if pgCode(err) == codeUndefinedTable {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpWrite, Err: err}
	}
	return nil
}

// SearchKNN orders rows by distance to q.Vector using the operator of q.Distance.
// Entry scores follow the Redis backend: squared distance for L2, raw distance otherwise.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, errors.New("vector is required")
	}
	if q.K <= 0 {
		return nil, errors.New("k must be positive")
	}

	sql, err := knnSQL(q.IndexName, q.Distance)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, pgvector.NewVector(q.Vector), q.K)
	if err != nil {
		if pgCode(err) == codeUndefinedTable {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer rows.Close()

	var entries []db.SearchEntry
	for rows.Next() {
		var e db.SearchEntry
		if err := rows.Scan(&e.Key, &e.Fields, &e.Score); err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("scan: %w", err)}
		}
		e.Fields = project(e.Fields, q.ReturnFields)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		if pgCode(err) == codeUndefinedTable {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// project keeps only the requested fields; no selection keeps everything.
func project(fields map[string]string, keep []string) map[string]string {
	if len(keep) == 0 || fields == nil {
		return fields
	}
	out := make(map[string]string, len(keep))
	for _, k := range keep {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// tableIdent maps an index name (e.g. "learnora:resources:idx") to a quoted table identifier.
func tableIdent(index string) string {
	return pgx.Identifier{strings.NewReplacer(":", "_", "-", "_").Replace(index)}.Sanitize()
}
