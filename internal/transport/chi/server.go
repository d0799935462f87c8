// Package chi exposes the HTTP API: paper upload and CRUD, similarity
// search with explanations, usage reporting, health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/domain"
	dompaper "github.com/kailas-cloud/paperdex/internal/domain/paper"
	"github.com/kailas-cloud/paperdex/internal/domain/search"
	domusage "github.com/kailas-cloud/paperdex/internal/domain/usage"
	healthuc "github.com/kailas-cloud/paperdex/internal/usecase/health"
	paperuc "github.com/kailas-cloud/paperdex/internal/usecase/paper"
	queryuc "github.com/kailas-cloud/paperdex/internal/usecase/query"
)

// DefaultTopK is used when a search request omits top_k.
const DefaultTopK = 5

// maxUploadBytes bounds uploaded document size (64 MiB).
const maxUploadBytes = 64 << 20

// PaperService is the paper catalog consumed by the HTTP layer.
type PaperService interface {
	AddPaper(ctx context.Context, in paperuc.AddPaperInput) (dompaper.Paper, error)
	GetPaper(ctx context.Context, id string) (dompaper.Paper, error)
	ListPapers(ctx context.Context) ([]dompaper.Paper, error)
	DeletePaper(ctx context.Context, id string) error
}

// IngestService runs the upload pipeline.
type IngestService interface {
	IngestDocument(ctx context.Context, r io.Reader, filename, titleOverride string) (dompaper.Paper, error)
}

// QueryService runs retrieval with explanations.
type QueryService interface {
	Search(ctx context.Context, in queryuc.Input) ([]queryuc.Match, error)
}

// UsageService reports token budget state.
type UsageService interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	papers        PaperService
	ingest        IngestService
	query         QueryService
	usage         UsageService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	papers PaperService,
	ingest IngestService,
	query QueryService,
	usage UsageService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		papers: papers,
		ingest: ingest,
		query:  query,
		usage:  usage,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrPaperNotFound, http.StatusNotFound, codePaperNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codePaperNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, codeDimensionMismatch),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrBudgetExceeded, http.StatusPaymentRequired, codeBudgetExceeded),
		sentinelHandler(domain.ErrExternalService, http.StatusBadGateway, codeExternalService),
		sentinelHandler(domain.ErrPersistence, http.StatusServiceUnavailable, codeStorageUnavailable),
	}
	return s
}

// Routes assembles the route tree.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/papers", func(r chi.Router) {
			r.Post("/upload", s.UploadPaper)
			r.Post("/", s.AddPaper)
			r.Get("/", s.ListPapers)
			r.Get("/{id}", s.GetPaper)
			r.Delete("/{id}", s.DeletePaper)
		})
		r.Post("/search", s.SearchPapers)
		r.Get("/usage", s.GetUsage)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	return r
}

// UploadPaper handles POST /api/v1/papers/upload (multipart).
func (s *Server) UploadPaper(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "missing multipart file field: "+err.Error())
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		title = r.URL.Query().Get("title")
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	p, err := s.ingest.IngestDocument(ctx, file, header.Filename, title)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, paperToResponse(&p))
}

// AddPaper handles POST /api/v1/papers.
func (s *Server) AddPaper(w http.ResponseWriter, r *http.Request) {
	var req addPaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	p, err := s.papers.AddPaper(ctx, paperuc.AddPaperInput{
		Title:          req.Title,
		Summary:        req.Summary,
		Keywords:       req.Keywords,
		Snippet:        req.ContentSnippet,
		FullTextLength: req.FullTextLength,
		Extra:          req.Extra,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	w.Header().Set("Location", "/api/v1/papers/"+p.ID())
	writeJSON(w, http.StatusCreated, paperToResponse(&p))
}

// GetPaper handles GET /api/v1/papers/{id}.
func (s *Server) GetPaper(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.papers.GetPaper(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paperToResponse(&p))
}

// ListPapers handles GET /api/v1/papers.
func (s *Server) ListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.papers.ListPapers(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]paperResponse, len(papers))
	for i := range papers {
		items[i] = paperToResponse(&papers[i])
	}

	writeJSON(w, http.StatusOK, paperListResponse{Items: items, Total: len(items)})
}

// DeletePaper handles DELETE /api/v1/papers/{id}.
func (s *Server) DeletePaper(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.papers.DeletePaper(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchPapers handles POST /api/v1/search.
func (s *Server) SearchPapers(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.TopK == 0 {
		req.TopK = DefaultTopK
	}
	explain := true
	if req.Explain != nil {
		explain = *req.Explain
	}

	filter, err := filterFromRequest(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	matches, err := s.query.Search(ctx, queryuc.Input{
		Query:   req.Query,
		TopK:    req.TopK,
		Filter:  filter,
		Explain: explain,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]searchResultItem, len(matches))
	for i := range matches {
		results[i] = matchToResponse(&matches[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: results,
		Total:   len(results),
	})
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.PeriodMonth
	switch r.URL.Query().Get("period") {
	case "day":
		period = domusage.PeriodDay
	case "total":
		period = domusage.PeriodTotal
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := map[string]any{
		"period": report.Period(),
		"usage": map[string]any{
			"embedding_requests": report.Metrics().EmbeddingRequests(),
			"tokens":             report.Metrics().Tokens(),
		},
		"budget": map[string]any{
			"tokens_limit":     report.Budget().TokensLimit(),
			"tokens_remaining": report.Budget().TokensRemaining(),
			"is_exhausted":     report.Budget().IsExhausted(),
		},
	}
	if report.PeriodStart() > 0 {
		resp["period_start_at"] = time.UnixMilli(report.PeriodStart()).UTC()
		resp["period_end_at"] = time.UnixMilli(report.PeriodEnd()).UTC()
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// filterFromRequest converts flat key/value filters to equality conditions.
func filterFromRequest(filters map[string]string) (search.Filter, error) {
	if len(filters) == 0 {
		return search.Filter{}, nil
	}
	conditions := make([]search.Condition, 0, len(filters))
	for k, v := range filters {
		conditions = append(conditions, search.Eq(k, v))
	}
	return search.NewFilter(conditions...)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrPaperNotFound,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrDimensionMismatch,
		domain.ErrBudgetExceeded,
		domain.ErrExternalService,
		domain.ErrPersistence,
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
