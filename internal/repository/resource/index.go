package resource

import (
	"strings"

	"github.com/learnora/learnora/internal/db"
	"github.com/learnora/learnora/internal/domain"
)

// Hash field names of a stored resource.
const (
	FieldTitle       = "title"
	FieldLink        = "link"
	FieldSource      = "source"
	FieldLabels      = "labels"
	FieldLabelPath   = "label_path"
	FieldCredibility = "credibility_score"
	FieldEmbedding   = "embedding"
)

// labelSeparator joins labels into one TAG value for filtering. The ordered
// hierarchy is read back from FieldLabelPath, so labels may contain it.
const labelSeparator = "|"

var (
	// IndexName is the vector index covering every stored resource.
	IndexName = domain.KeyPrefix + "resources:idx"
	// KeyPrefix prefixes every resource key.
	KeyPrefix = domain.KeyPrefix + "resource:"
	// ReturnFields are loaded with each nearest-neighbour hit.
	ReturnFields = []string{FieldTitle, FieldLink, FieldSource, FieldLabels, FieldLabelPath, FieldCredibility}
	// Distance is the metric the index is built with. Similarity is derived as 1/(1+d).
	Distance = db.DistanceL2
)

// HNSWConfig holds build-time parameters of the vector index.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// DefaultHNSW mirrors the FT.CREATE defaults.
var DefaultHNSW = HNSWConfig{M: 16, EFConstruct: 200}

// Key returns the storage key of a resource id.
func Key(id string) string { return KeyPrefix + id }

// IDFromKey strips the storage prefix from a key.
func IDFromKey(key string) string {
	return strings.TrimPrefix(key, KeyPrefix)
}

func buildIndex(dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Tag(FieldLabels, db.WithSeparator(labelSeparator)).
		Tag(FieldSource).
		Numeric(FieldCredibility).
		Vector(FieldEmbedding, dim, Distance, db.HNSW(hnsw.M, hnsw.EFConstruct)).
		Build()
}
