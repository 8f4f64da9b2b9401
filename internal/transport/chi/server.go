// Package chi exposes the HTTP API: semantic search, bucket
// generation, health, and the end-to-end wiring probe.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/myuzeplay/playsearch/internal/domain"
	bucketuc "github.com/myuzeplay/playsearch/internal/usecase/bucket"
	diaguc "github.com/myuzeplay/playsearch/internal/usecase/diag"
	healthuc "github.com/myuzeplay/playsearch/internal/usecase/health"
	searchuc "github.com/myuzeplay/playsearch/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the use case services behind the HTTP routes.
type Server struct {
	search        *searchuc.Service
	buckets       *bucketuc.Service
	health        *healthuc.Service
	diag          *diaguc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	buckets *bucketuc.Service,
	health *healthuc.Service,
	diag *diaguc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		buckets: buckets,
		health:  health,
		diag:    diag,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrVectorStoreError, http.StatusServiceUnavailable, codeVectorStoreError),
	}
	return s
}

// Routes registers all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/test", s.WiringProbe)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search/semantic", s.SearchSemantic)
		r.Post("/buckets/generate", s.GenerateBuckets)
	})
}

// SearchSemantic handles POST /v1/search/semantic.
func (s *Server) SearchSemantic(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	topK := 0
	if req.TopK != nil {
		topK = *req.TopK
		if topK <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "top_k must be positive")
			return
		}
	}
	scoreThreshold := -1.0
	if req.ScoreThreshold != nil {
		scoreThreshold = *req.ScoreThreshold
		if scoreThreshold < 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "score_threshold must be non-negative")
			return
		}
	}

	text := req.QueryText()
	hits, err := s.search.Search(r.Context(), text, topK, scoreThreshold, filterFromDTO(req.Filters))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]SearchResultItem, len(hits))
	for i, h := range hits {
		results[i] = hitToDTO(h)
	}

	filtersApplied := SearchFilters{}
	if req.Filters != nil {
		filtersApplied = *req.Filters
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:          text,
		FiltersApplied: filtersApplied,
		TotalResults:   len(results),
		Results:        results,
	})
}

// GenerateBuckets handles POST /v1/buckets/generate.
func (s *Server) GenerateBuckets(w http.ResponseWriter, r *http.Request) {
	var req BucketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := s.buckets.Generate(
		r.Context(),
		bucketItemsFromDTO(req.Items),
		criteriaFromDTO(req.Criteria),
		req.Market,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bucketResultToDTO(res))
}

// HealthCheck handles GET /health. Always answers from process-local
// state, never from dependencies.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	report := s.health.Check()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  string(report.Status),
		Service: report.Service,
		Version: report.Version,
		Uptime:  report.Uptime.String(),
	})
}

// WiringProbe handles GET /test.
func (s *Server) WiringProbe(w http.ResponseWriter, r *http.Request) {
	report := s.diag.Run(r.Context())

	status := http.StatusOK
	if report.Status != diaguc.OK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, diagReportToDTO(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorStoreError,
		domain.ErrNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
