package fishbone

import (
	"context"
	"errors"
	"testing"

	"github.com/learnora/learnora/internal/domain"
	"github.com/learnora/learnora/internal/domain/resource"
)

type mockRetriever struct {
	results []resource.Resource
	err     error
	lastK   int
}

func (m *mockRetriever) Search(_ context.Context, _ string, k int) ([]resource.Resource, error) {
	m.lastK = k
	return m.results, m.err
}

func TestService_Fishbone(t *testing.T) {
	ret := &mockRetriever{results: []resource.Resource{
		article("a", 0.2),
		video("v", 0.6),
	}}
	svc := New(ret)

	res, err := svc.Fishbone(context.Background(), "calculus", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ret.lastK != 25 {
		t.Errorf("k = %d, want 25", ret.lastK)
	}
	if res.Query != "calculus" || res.TotalArticles != 1 || res.TotalVideos != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestService_Fishbone_NoResults(t *testing.T) {
	svc := New(&mockRetriever{})

	res, err := svc.Fishbone(context.Background(), "q", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Articles == nil || res.Videos == nil {
		t.Fatal("expected non-nil empty lanes")
	}
	if res.TotalArticles != 0 || res.TotalVideos != 0 {
		t.Errorf("expected zero totals, got %d/%d", res.TotalArticles, res.TotalVideos)
	}
}

func TestService_Fishbone_PropagatesRetrievalError(t *testing.T) {
	svc := New(&mockRetriever{err: domain.ErrResourceUnavailable})

	_, err := svc.Fishbone(context.Background(), "q", 25)
	if !errors.Is(err, domain.ErrResourceUnavailable) {
		t.Fatalf("expected ErrResourceUnavailable, got %v", err)
	}
}
