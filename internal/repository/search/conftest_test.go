package search

import (
	"context"
	"testing"

	"github.com/learnora/learnora/internal/db"
)

// mockStore records every KNN query. Without searchKNNFn it answers with a nil result.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	queries     []db.KNNQuery
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.queries = append(m.queries, *q)
	if m.searchKNNFn == nil {
		return nil, nil
	}
	return m.searchKNNFn(ctx, q)
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func queryVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(i+1) / 10
	}
	return vec
}
