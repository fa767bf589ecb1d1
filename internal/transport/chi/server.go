package chi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/learnora/learnora/internal/domain/resource"
	"github.com/learnora/learnora/internal/domain/roadmap"
	healthuc "github.com/learnora/learnora/internal/usecase/health"
	"github.com/learnora/learnora/internal/version"
)

// ServerName identifies this backend in health responses.
const ServerName = "learnora_backend_v2"

// noResultsMessage accompanies an empty roadmap.
const noResultsMessage = "No results found for your query"

// Defaults are the retrieval sizes used when a request omits k or steps.
type Defaults struct {
	SearchK      int
	RoadmapK     int
	RoadmapSteps int
	FishboneK    int
}

// DefaultDefaults mirror the public API documentation.
var DefaultDefaults = Defaults{SearchK: 10, RoadmapK: 25, RoadmapSteps: 5, FishboneK: 25}

func (d Defaults) withDefaults() Defaults {
	if d.SearchK <= 0 {
		d.SearchK = DefaultDefaults.SearchK
	}
	if d.RoadmapK <= 0 {
		d.RoadmapK = DefaultDefaults.RoadmapK
	}
	if d.RoadmapSteps <= 0 {
		d.RoadmapSteps = DefaultDefaults.RoadmapSteps
	}
	if d.FishboneK <= 0 {
		d.FishboneK = DefaultDefaults.FishboneK
	}
	return d
}

// Server holds the HTTP handlers of the Learnora API.
type Server struct {
	search   Searcher
	roadmap  RoadmapBuilder
	fishbone FishboneBuilder
	health   HealthChecker
	defaults Defaults
	limits   Limits
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	roadmap RoadmapBuilder,
	fishbone FishboneBuilder,
	health HealthChecker,
	defaults Defaults,
	limits Limits,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:   search,
		roadmap:  roadmap,
		fishbone: fishbone,
		health:   health,
		defaults: defaults.withDefaults(),
		limits:   limits.withDefaults(),
		logger:   logger,
	}
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// SearchResult is one retrieved resource.
type SearchResult struct {
	ID               string   `json:"id"`
	Title            string   `json:"title,omitempty"`
	Link             string   `json:"link"`
	Source           string   `json:"source,omitempty"`
	Labels           []string `json:"labels"`
	CredibilityScore float64  `json:"credibility_score"`
	SimilarityScore  float64  `json:"similarity_score"`
}

// RoadmapResponse is the body of GET /api/roadmap.
type RoadmapResponse struct {
	Query   string         `json:"query"`
	Steps   []roadmap.Step `json:"steps"`
	Message string         `json:"message,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string            `json:"status"`
	Server string            `json:"server"`
	Checks map[string]string `json:"checks"`
}

// InfoResponse is the body of GET / without a query.
type InfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Build     string            `json:"build"`
	Endpoints map[string]string `json:"endpoints"`
	Usage     map[string]string `json:"usage"`
}

// Index handles GET /. With q it answers like /api/fishbone, otherwise it describes the API.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	q, err := queryParam(r, false, s.limits.MaxQueryLen)
	if err != nil {
		writeParamError(w, err)
		return
	}
	if q != "" {
		s.writeFishbone(w, r, q)
		return
	}

	writeJSON(w, http.StatusOK, InfoResponse{
		Message: "Learnora Backend API",
		Version: "2.0",
		Build:   version.Version,
		Endpoints: map[string]string{
			"health":   "/api/health",
			"search":   "/api/search",
			"roadmap":  "/api/roadmap",
			"fishbone": "/api/fishbone",
		},
		Usage: map[string]string{
			"api_info":      "GET /",
			"fishbone_data": "GET /?q=your_query&k=25",
		},
	})
}

// Health handles GET /api/health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status: string(report.Status),
		Server: ServerName,
		Checks: checks,
	})
}

// Search handles GET /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, err := queryParam(r, true, s.limits.MaxQueryLen)
	if err != nil {
		writeParamError(w, err)
		return
	}
	k, err := intParam(r, "k", s.defaults.SearchK, s.limits.MaxK)
	if err != nil {
		writeParamError(w, err)
		return
	}

	found, err := s.search.Search(r.Context(), q, k)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	results := make([]SearchResult, len(found))
	for i, res := range found {
		results[i] = searchResultFrom(res)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Results: results})
}

// Roadmap handles GET /api/roadmap.
func (s *Server) Roadmap(w http.ResponseWriter, r *http.Request) {
	q, err := queryParam(r, true, s.limits.MaxQueryLen)
	if err != nil {
		writeParamError(w, err)
		return
	}
	k, err := intParam(r, "k", s.defaults.RoadmapK, s.limits.MaxK)
	if err != nil {
		writeParamError(w, err)
		return
	}
	steps, err := intParam(r, "steps", s.defaults.RoadmapSteps, s.limits.MaxSteps)
	if err != nil {
		writeParamError(w, err)
		return
	}

	out, err := s.roadmap.Roadmap(r.Context(), q, k, steps)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	resp := RoadmapResponse{Query: q, Steps: out}
	if len(out) == 0 {
		resp.Steps = []roadmap.Step{}
		resp.Message = noResultsMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

// Fishbone handles GET /api/fishbone.
func (s *Server) Fishbone(w http.ResponseWriter, r *http.Request) {
	q, err := queryParam(r, true, s.limits.MaxQueryLen)
	if err != nil {
		writeParamError(w, err)
		return
	}
	s.writeFishbone(w, r, q)
}

func (s *Server) writeFishbone(w http.ResponseWriter, r *http.Request, q string) {
	k, err := intParam(r, "k", s.defaults.FishboneK, s.limits.MaxK)
	if err != nil {
		writeParamError(w, err)
		return
	}

	out, err := s.fishbone.Fishbone(r.Context(), q, k)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func searchResultFrom(r resource.Resource) SearchResult {
	return SearchResult{
		ID:               r.ID(),
		Title:            r.Title(),
		Link:             r.Link(),
		Source:           r.Source(),
		Labels:           r.Labels(),
		CredibilityScore: r.Credibility(),
		SimilarityScore:  r.Similarity(),
	}
}
