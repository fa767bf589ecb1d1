package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/learnora/learnora/internal/db"
)

const (
	errIndexExists  = "index already exists"
	errUnknownIndex = "unknown index name"
)

// CreateIndex translates def into FT.CREATE.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := createArgs(def)
	if err != nil {
		return fmt.Errorf("invalid index definition: %w", err)
	}

	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, errIndexExists):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
}

// DropIndex runs FT.DROPINDEX. Indexed hashes are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, errUnknownIndex):
		return db.ErrIndexNotFound
	default:
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
}

// IndexExists reports whether FT.INFO knows the index.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, errUnknownIndex):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// createArgs renders everything after the FT.CREATE keyword.
func createArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	storage := def.StorageType
	if storage == "" {
		storage = db.StorageHash
	}

	args := []string{def.Name, "ON", string(storage)}
	if n := len(def.Prefixes); n > 0 {
		args = append(args, "PREFIX", strconv.Itoa(n))
		args = append(args, def.Prefixes...)
	}

	args = append(args, "SCHEMA")
	for i := range def.Fields {
		field, err := schemaArgs(&def.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, field...)
	}
	return args, nil
}

func schemaArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}
	switch f.Type {
	case db.IndexFieldNumeric:
		return append(args, "NUMERIC"), nil
	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.Tag.Separator != "" {
			args = append(args, "SEPARATOR", f.Tag.Separator)
		}
		if f.Tag.CaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
		return args, nil
	case db.IndexFieldVector:
		attrs, err := vectorAttrs(f)
		if err != nil {
			return nil, err
		}
		return append(args, attrs...), nil
	default:
		return nil, fmt.Errorf("field %q: unknown type %d", f.Name, f.Type)
	}
}

// vectorAttrs renders "VECTOR <algo> <nargs> <attr value>...".
func vectorAttrs(f *db.IndexField) ([]string, error) {
	if f.Vector.Dim <= 0 {
		return nil, fmt.Errorf("field %q: vector DIM must be positive", f.Name)
	}

	algo := f.Vector.Algorithm
	if algo == "" {
		algo = db.VectorHNSW
	}
	distance := f.Vector.Distance
	if distance == "" {
		distance = db.DistanceL2
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.Vector.Dim),
		"DISTANCE_METRIC", string(distance),
	}
	optional := func(name string, v int) {
		if v > 0 {
			attrs = append(attrs, name, strconv.Itoa(v))
		}
	}
	switch algo {
	case db.VectorHNSW:
		optional("M", f.Vector.M)
		optional("EF_CONSTRUCTION", f.Vector.EFConstruct)
	case db.VectorFlat:
		optional("BLOCK_SIZE", f.Vector.BlockSize)
	default:
		return nil, fmt.Errorf("field %q: unknown vector algorithm %q", f.Name, algo)
	}

	return append([]string{"VECTOR", string(algo), strconv.Itoa(len(attrs))}, attrs...), nil
}
