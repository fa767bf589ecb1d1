package db

import (
	"errors"
	"fmt"
	"regexp"
)

// StorageType is how indexed records are laid out in the backend.
type StorageType string

// StorageHash keeps each record in a Redis hash.
const StorageHash StorageType = "HASH"

// DistanceMetric is the vector distance function. Lower distances are closer for all of them.
type DistanceMetric string

// Supported metrics.
const (
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm is the ANN structure built for a vector field.
type VectorAlgorithm string

// Supported algorithms.
const (
	VectorHNSW VectorAlgorithm = "HNSW"
	VectorFlat VectorAlgorithm = "FLAT"
)

// IndexFieldType is the kind of an indexed field.
type IndexFieldType int

// Field kinds.
const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldTag
	IndexFieldVector
)

// TagSpec configures a TAG field.
type TagSpec struct {
	Separator     string
	CaseSensitive bool
}

// VectorSpec configures a VECTOR field. Zero tuning values leave the backend defaults.
type VectorSpec struct {
	Algorithm   VectorAlgorithm
	Dim         int
	Distance    DistanceMetric
	M           int
	EFConstruct int
	BlockSize   int // FLAT only
}

// IndexField is one schema entry. Only the settings matching Type are read.
type IndexField struct {
	Name   string
	Type   IndexFieldType
	Tag    TagSpec
	Vector VectorSpec
}

// IndexDefinition describes a searchable vector index.
// Redis renders it as FT.CREATE, Postgres as a table plus an HNSW index.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_:-]+$`)

// IsValidIdentifier reports whether s is usable as an index name on every backend.
func IsValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Validate checks the definition before it reaches a backend.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return errors.New("index name is required")
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	case len(idx.Fields) == 0:
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	vectors := 0
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = struct{}{}

		if f.Type == IndexFieldVector {
			if f.Vector.Dim <= 0 {
				return fmt.Errorf("field %s: vector field requires positive DIM", f.Name)
			}
			vectors++
		}
	}
	if vectors == 0 {
		return errors.New("a vector field is required")
	}
	return nil
}

// VectorField returns the first vector field.
func (idx *IndexDefinition) VectorField() (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Type == IndexFieldVector {
			return f, true
		}
	}
	return IndexField{}, false
}
