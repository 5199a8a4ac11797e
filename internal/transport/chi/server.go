// Package chi is the HTTP transport: routes, request binding and error mapping.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	healthuc "github.com/kailas-cloud/docinsight/internal/usecase/health"
)

const (
	defaultMaxUploadMB = 50
	defaultNumSamples  = 20
	maxBatchItems      = 200
	maxJSONBody        = 10 << 20
)

// Services bundles the use cases behind the API.
type Services struct {
	Ingest    Ingestor
	Sources   SourceLister
	Retrieval Retriever
	Answer    Answerer
	Analyst   Analyst
	Eval      Evaluator
	Health    HealthChecker
	// Auth is optional; without it the /auth routes are not mounted.
	Auth Authenticator
}

// Server holds the HTTP handlers.
type Server struct {
	svc            Services
	maxUploadBytes int64
	defaultSamples int
	errorHandlers  []errorHandler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxUploadMB caps multipart upload size.
func WithMaxUploadMB(mb int) ServerOption {
	return func(s *Server) {
		if mb > 0 {
			s.maxUploadBytes = int64(mb) << 20
		}
	}
}

// WithDefaultSamples sets the test set size used when the request omits num_samples.
func WithDefaultSamples(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.defaultSamples = n
		}
	}
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, opts ...ServerOption) *Server {
	s := &Server{
		svc:            svc,
		maxUploadBytes: defaultMaxUploadMB << 20,
		defaultSamples: defaultNumSamples,
		errorHandlers:  defaultErrorHandlers(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "docinsight API is running"})
}

// Upload handles POST /api/upload.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds %d MB", s.maxUploadBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.svc.Ingest.Upload(ctx, header.Filename, data)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleUploadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Message: res.Message, Filename: res.Filename})
}

// Documents handles GET /api/documents.
func (s *Server) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.Ingest.Documents(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentsResponse{Documents: docs})
}

// Sources handles GET /api/sources.
func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.svc.Sources.ListSources(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sourcesResponse{Sources: sources})
}

// Query handles GET /api/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	q, err := queryString(r, "q", true)
	if err != nil || q == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	files, err := queryString(r, "files", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	hits, err := s.svc.Retrieval.Retrieve(ctx, q, splitFiles(files))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	ans := s.svc.Answer.Answer(ctx, q, hits)

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, queryResponse{Results: hitsToResults(hits), Answer: ans.Text})
}

// Insights handles GET /api/insights.
func (s *Server) Insights(w http.ResponseWriter, r *http.Request) {
	filename, err := queryString(r, "filename", true)
	if err != nil || filename == "" {
		writeError(w, http.StatusBadRequest, "Filename parameter is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.svc.Analyst.Insights(ctx, filename)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleOutcomeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Compare handles POST /api/compare.
func (s *Server) Compare(w http.ResponseWriter, r *http.Request) {
	file1, err1 := queryString(r, "file1", true)
	file2, err2 := queryString(r, "file2", true)
	if err1 != nil || err2 != nil || file1 == "" || file2 == "" {
		writeError(w, http.StatusBadRequest, "Both file1 and file2 parameters are required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.svc.Analyst.Compare(ctx, file1, file2)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleOutcomeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GenerateTestSet handles POST /api/evaluate/generate.
func (s *Server) GenerateTestSet(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "num_samples")
	if err != nil {
		writeError(w, http.StatusBadRequest, "num_samples must be an integer")
		return
	}

	var req generateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	samples := s.defaultSamples
	switch {
	case n != nil:
		samples = *n
	case req.NumSamples != nil:
		samples = *req.NumSamples
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	items, err := s.svc.Eval.Synthesize(ctx, req.Files, samples)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleOutcomeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, testSetResponse{TestSet: items})
}

// RunSingle handles POST /api/evaluate/run_single.
func (s *Server) RunSingle(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" || req.TrueAnswer == "" {
		writeError(w, http.StatusBadRequest, "question and true_answer are required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.svc.Eval.Score(ctx, req.Question, req.TrueAnswer, req.Files)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleOutcomeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// RunBatch handles POST /api/evaluate/run.
func (s *Server) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Items) == 0 || len(req.Items) > maxBatchItems {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("items count must be between 1 and %d", maxBatchItems))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rep, err := s.svc.Eval.RunBatch(ctx, req.Items, req.Files)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleOutcomeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToResponse(rep))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func hitsToResults(hits []domchunk.Hit) []queryResult {
	out := make([]queryResult, len(hits))
	for i, h := range hits {
		out[i] = queryResult{Content: h.Text, Source: h.Source, Page: h.Page}
	}
	return out
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	emb, llm := usage.Tokens()
	if emb > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(emb))
	}
	if llm > 0 {
		w.Header().Set("X-LLM-Tokens", strconv.Itoa(llm))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
