package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnora/learnora/internal/domain"
	domres "github.com/learnora/learnora/internal/domain/resource"
)

type mockWriter struct {
	ensureCalls []int
	recreate    bool
	upserts     [][]domres.Resource
	ensureErr   error
	upsertErr   error
}

func (m *mockWriter) EnsureIndex(_ context.Context, dim int, recreate bool) error {
	m.ensureCalls = append(m.ensureCalls, dim)
	m.recreate = recreate
	return m.ensureErr
}

func (m *mockWriter) Upsert(_ context.Context, resources []domres.Resource, vectors [][]float32) error {
	if len(resources) != len(vectors) {
		return fmt.Errorf("mismatch %d/%d", len(resources), len(vectors))
	}
	m.upserts = append(m.upserts, resources)
	return m.upsertErr
}

type mockBatchEmbedder struct {
	dim      int
	batches  [][]string
	err      error
	shortOne bool
}

func (m *mockBatchEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: make([]float32, m.dim)}, m.err
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batches = append(m.batches, texts)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, m.dim)
	}
	if m.shortOne && len(out) > 0 {
		out = out[1:]
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

func testResources(n int) []domres.Resource {
	out := make([]domres.Resource, n)
	for i := range out {
		out[i] = domres.New(fmt.Sprintf("r%d", i), fmt.Sprintf("Title %d", i), "", "", nil, 0)
	}
	return out
}

func TestRun_Batches(t *testing.T) {
	w := &mockWriter{}
	e := &mockBatchEmbedder{dim: 3}
	svc := New(w, e)

	stats, err := svc.Run(context.Background(), testResources(5), Options{BatchSize: 2, Recreate: true})
	require.NoError(t, err)

	assert.Equal(t, Stats{Resources: 5, Batches: 3, Tokens: 5, Dimension: 3}, stats)
	assert.Equal(t, []int{3}, w.ensureCalls, "index created once with the vector dimension")
	assert.True(t, w.recreate)
	require.Len(t, w.upserts, 3)
	assert.Len(t, w.upserts[2], 1)
	assert.Equal(t, []string{"Title 0", "Title 1"}, e.batches[0])
}

func TestRun_DefaultBatchSize(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, &mockBatchEmbedder{dim: 2})

	stats, err := svc.Run(context.Background(), testResources(DefaultBatchSize+1), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Batches)
}

func TestRun_Empty(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, &mockBatchEmbedder{dim: 2})

	stats, err := svc.Run(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Zero(t, stats.Resources)
	assert.Empty(t, w.ensureCalls)
}

func TestRun_EmbedError(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, &mockBatchEmbedder{err: domain.ErrEmbeddingProviderError})

	_, err := svc.Run(context.Background(), testResources(2), Options{})
	require.ErrorIs(t, err, domain.ErrEmbeddingProviderError)
	assert.Empty(t, w.upserts)
}

func TestRun_VectorCountMismatch(t *testing.T) {
	svc := New(&mockWriter{}, &mockBatchEmbedder{dim: 2, shortOne: true})

	_, err := svc.Run(context.Background(), testResources(2), Options{})
	require.ErrorIs(t, err, domain.ErrEmbeddingProviderError)
}

func TestRun_WriterErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&mockWriter{ensureErr: boom}, &mockBatchEmbedder{dim: 2}).
		Run(context.Background(), testResources(1), Options{})
	require.ErrorIs(t, err, boom)

	stats, err := New(&mockWriter{upsertErr: boom}, &mockBatchEmbedder{dim: 2}).
		Run(context.Background(), testResources(1), Options{})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, stats.Resources)
}
