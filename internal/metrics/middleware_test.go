package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(method, route, status string) float64 {
	return testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(method, route, status))
}

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/fishbone", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"articles":[]}`))
	})
	r.Get("/api/roadmap", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Head("/api/search", func(w http.ResponseWriter, _ *http.Request) {})
	return r
}

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method, path, route, status string
	}{
		{http.MethodGet, "/api/fishbone?q=go", "/api/fishbone", "200"},
		{http.MethodGet, "/api/roadmap", "/api/roadmap", "400"},
		{http.MethodHead, "/api/search", "/api/search", "200"},
		{http.MethodGet, "/nope", unmatchedRoute, "404"},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			before := count(tc.method, tc.route, tc.status)
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, http.NoBody))
			assert.InDelta(t, before+1, count(tc.method, tc.route, tc.status), 1e-9)
		})
	}
}

func TestMiddleware_ObservesDuration(t *testing.T) {
	newRouter().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fishbone", http.NoBody))
	assert.Positive(t, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRouteLabel_WithoutChiContext(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routeLabel(httptest.NewRequest(http.MethodGet, "/x", http.NoBody)))
}

func TestRegisterHTTPMetrics_Exposition(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()

	r := newRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fishbone", http.NoBody))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "learnora_http_requests_total")
}
