package chi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/metrics"
)

// RouterOptions configures middleware around the API routes.
type RouterOptions struct {
	CORS      CORSOptions
	RateLimit RateLimitOptions
	// Metrics serves /metrics; nil uses the default Prometheus registry.
	Metrics http.Handler
}

// silentPaths are browser probes answered with 204 instead of a 404 body.
var silentPaths = map[string]struct{}{
	"/favicon.ico":   {},
	"/robots.txt":    {},
	"/manifest.json": {},
}

// NewRouter mounts the server's handlers on a chi router.
func NewRouter(s *Server, opts RouterOptions, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(opts.CORS))
	r.Use(metrics.Middleware())
	r.Use(rateLimitMiddleware(opts.RateLimit))

	r.Get("/", s.Index)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.Health)
		r.Get("/search", s.Search)
		r.Get("/roadmap", s.Roadmap)
		r.Get("/fishbone", s.Fishbone)
		r.Options("/fishbone", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, struct{}{})
		})
	})

	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if _, ok := silentPaths[req.URL.Path]; ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusNotFound, notFoundResponse{
			Code:            CodeNotFound,
			Message:         "route not found",
			RequestedPath:   req.URL.Path,
			Method:          req.Method,
			AvailableRoutes: routeList(r),
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
			"method "+req.Method+" not allowed on "+req.URL.Path)
	})

	return r
}

type notFoundResponse struct {
	Code            string   `json:"code"`
	Message         string   `json:"message"`
	RequestedPath   string   `json:"requested_path"`
	Method          string   `json:"method"`
	AvailableRoutes []string `json:"available_routes"`
}

func routeList(r chi.Routes) []string {
	var out []string
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if method == http.MethodGet {
			out = append(out, strings.TrimSuffix(route, "/*"))
		}
		return nil
	})
	return out
}
