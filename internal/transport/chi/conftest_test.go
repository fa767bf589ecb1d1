package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/domain/fishbone"
	"github.com/learnora/learnora/internal/domain/resource"
	"github.com/learnora/learnora/internal/domain/roadmap"
	healthuc "github.com/learnora/learnora/internal/usecase/health"
)

type mockSearcher struct {
	fn func(ctx context.Context, query string, k int) ([]resource.Resource, error)
}

func (m *mockSearcher) Search(ctx context.Context, query string, k int) ([]resource.Resource, error) {
	if m.fn != nil {
		return m.fn(ctx, query, k)
	}
	return []resource.Resource{}, nil
}

type mockRoadmap struct {
	fn func(ctx context.Context, query string, k, maxSteps int) ([]roadmap.Step, error)
}

func (m *mockRoadmap) Roadmap(ctx context.Context, query string, k, maxSteps int) ([]roadmap.Step, error) {
	if m.fn != nil {
		return m.fn(ctx, query, k, maxSteps)
	}
	return []roadmap.Step{}, nil
}

type mockFishbone struct {
	fn func(ctx context.Context, query string, k int) (fishbone.Result, error)
}

func (m *mockFishbone) Fishbone(ctx context.Context, query string, k int) (fishbone.Result, error) {
	if m.fn != nil {
		return m.fn(ctx, query, k)
	}
	return fishbone.Empty(query), nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testDeps struct {
	search   *mockSearcher
	roadmap  *mockRoadmap
	fishbone *mockFishbone
	health   *mockHealth
}

func newTestRouter(t *testing.T, opts RouterOptions) (http.Handler, *testDeps) {
	t.Helper()
	deps := &testDeps{
		search:   &mockSearcher{},
		roadmap:  &mockRoadmap{},
		fishbone: &mockFishbone{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	s := NewServer(deps.search, deps.roadmap, deps.fishbone, deps.health, Defaults{}, Limits{}, zap.NewNop())
	return NewRouter(s, opts, zap.NewNop()), deps
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
