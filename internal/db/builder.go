package db

// TagOption customises a TAG field.
type TagOption func(*IndexField)

// WithSeparator sets the character that splits a multi-value tag.
func WithSeparator(sep string) TagOption {
	return func(f *IndexField) { f.Tag.Separator = sep }
}

// CaseSensitive keeps tag values as stored instead of lowercasing them.
func CaseSensitive() TagOption {
	return func(f *IndexField) { f.Tag.CaseSensitive = true }
}

// VectorOption selects the ANN algorithm and its parameters.
type VectorOption func(*IndexField)

// HNSW indexes the vector with a navigable small-world graph. Zero values keep server defaults.
func HNSW(m, efConstruct int) VectorOption {
	return func(f *IndexField) {
		f.Vector.Algorithm = VectorHNSW
		f.Vector.M = m
		f.Vector.EFConstruct = efConstruct
	}
}

// Flat indexes the vector for exact brute-force search.
func Flat(blockSize int) VectorOption {
	return func(f *IndexField) {
		f.Vector.Algorithm = VectorFlat
		f.Vector.BlockSize = blockSize
	}
}

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a hash-backed index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, StorageType: StorageHash}}
}

// Prefix restricts the index to keys with the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldNumeric})
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(name string, opts ...TagOption) *IndexBuilder {
	f := IndexField{Name: name, Type: IndexFieldTag}
	for _, o := range opts {
		o(&f)
	}
	return b.add(f)
}

// Vector adds a FLOAT32 vector field. Without options it uses HNSW with server defaults.
func (b *IndexBuilder) Vector(name string, dim int, distance DistanceMetric, opts ...VectorOption) *IndexBuilder {
	f := IndexField{
		Name:   name,
		Type:   IndexFieldVector,
		Vector: VectorSpec{Algorithm: VectorHNSW, Dim: dim, Distance: distance},
	}
	for _, o := range opts {
		o(&f)
	}
	return b.add(f)
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates the definition and returns a copy detached from the builder.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Prefixes = append([]string(nil), b.def.Prefixes...)
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild is Build for definitions known at compile time. It panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
