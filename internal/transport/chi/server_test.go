package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/db"
	"github.com/kailas-cloud/docinsight/internal/domain"
	domanswer "github.com/kailas-cloud/docinsight/internal/domain/answer"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	domeval "github.com/kailas-cloud/docinsight/internal/domain/evaluation"
	"github.com/kailas-cloud/docinsight/internal/domain/insight"
	healthuc "github.com/kailas-cloud/docinsight/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docinsight/internal/usecase/ingest"
)

// --- Mocks ---

type mockIngest struct {
	uploadFn    func(filename string, data []byte) (ingestuc.Result, error)
	documentsFn func() ([]string, error)
}

func (m *mockIngest) Upload(ctx context.Context, filename string, data []byte) (ingestuc.Result, error) {
	domain.UsageFromContext(ctx).AddEmbeddingTokens(42)
	return m.uploadFn(filename, data)
}

func (m *mockIngest) Documents(_ context.Context) ([]string, error) { return m.documentsFn() }

type mockSources struct {
	sources []string
	err     error
}

func (m *mockSources) ListSources(_ context.Context) ([]string, error) { return m.sources, m.err }

type mockRetriever struct {
	gotQuery   string
	gotSources []string
	hits       []domchunk.Hit
	err        error
}

func (m *mockRetriever) Retrieve(_ context.Context, q string, sources []string) ([]domchunk.Hit, error) {
	m.gotQuery, m.gotSources = q, sources
	return m.hits, m.err
}

type mockAnswerer struct{}

func (mockAnswerer) Answer(ctx context.Context, _ string, hits []domchunk.Hit) domanswer.Answer {
	if len(hits) == 0 {
		return domanswer.NoContext()
	}
	domain.UsageFromContext(ctx).AddLLMTokens(7)
	return domanswer.Generated("forty-two")
}

type mockAnalyst struct {
	insightsFn func(filename string) (insight.Insight, error)
	compareFn  func(f1, f2 string) (insight.Comparison, error)
}

func (m *mockAnalyst) Insights(_ context.Context, filename string) (insight.Insight, error) {
	return m.insightsFn(filename)
}

func (m *mockAnalyst) Compare(_ context.Context, f1, f2 string) (insight.Comparison, error) {
	return m.compareFn(f1, f2)
}

type mockEval struct {
	gotSources []string
	gotN       int
	synthErr   error
	scoreFn    func(q, a string) (domeval.ScoredResult, error)
	report     domeval.Report
}

func (m *mockEval) Synthesize(_ context.Context, sources []string, n int) ([]domeval.QAItem, error) {
	m.gotSources, m.gotN = sources, n
	if m.synthErr != nil {
		return nil, m.synthErr
	}
	return []domeval.QAItem{{Question: "Q?", TrueAnswer: "A."}}, nil
}

func (m *mockEval) Score(_ context.Context, q, a string, sources []string) (domeval.ScoredResult, error) {
	m.gotSources = sources
	return m.scoreFn(q, a)
}

func (m *mockEval) RunBatch(_ context.Context, _ []domeval.QAItem, _ []string) (domeval.Report, error) {
	return m.report, nil
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

type fixture struct {
	ingest    *mockIngest
	sources   *mockSources
	retriever *mockRetriever
	analyst   *mockAnalyst
	eval      *mockEval
	health    *mockHealth
	handler   http.Handler
}

func newFixture(t *testing.T, apiKeys []string, opts ...ServerOption) *fixture {
	t.Helper()
	f := &fixture{
		ingest: &mockIngest{
			uploadFn: func(name string, _ []byte) (ingestuc.Result, error) {
				return ingestuc.Result{Message: "Successfully processed 3 chunks from " + name, Filename: name}, nil
			},
			documentsFn: func() ([]string, error) { return []string{"a.pdf", "b.pdf"}, nil },
		},
		sources:   &mockSources{sources: []string{"a.pdf"}},
		retriever: &mockRetriever{},
		analyst: &mockAnalyst{
			insightsFn: func(string) (insight.Insight, error) {
				return insight.Insight{Summary: "s", KeyEntities: []string{"e"}, Topics: []string{"t"}}, nil
			},
			compareFn: func(string, string) (insight.Comparison, error) {
				return insight.Comparison{Similarities: []string{}, Differences: []string{}, Conclusion: "c"}, nil
			},
		},
		eval: &mockEval{
			scoreFn: func(q, a string) (domeval.ScoredResult, error) {
				return domeval.ScoredResult{Question: q, TrueAnswer: a, Score: 4}, nil
			},
		},
		health: &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"valkey": healthuc.CheckOK}}},
	}
	srv := NewServer(Services{
		Ingest:    f.ingest,
		Sources:   f.sources,
		Retrieval: f.retriever,
		Answer:    mockAnswerer{},
		Analyst:   f.analyst,
		Eval:      f.eval,
		Health:    f.health,
	}, opts...)
	f.handler = NewRouter(srv, RouterConfig{APIKeys: apiKeys})
	return f
}

func (f *fixture) do(method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func multipartBody(t *testing.T, field, filename string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return buf.Bytes(), mw.FormDataContentType()
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

// --- Tests ---

func TestRoot(t *testing.T) {
	rr := newFixture(t, nil).do("GET", "/", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[messageResponse](t, rr); !strings.Contains(got.Message, "running") {
		t.Errorf("message = %q", got.Message)
	}
}

func TestUpload_Success(t *testing.T) {
	f := newFixture(t, nil)
	var gotData []byte
	f.ingest.uploadFn = func(name string, data []byte) (ingestuc.Result, error) {
		gotData = data
		return ingestuc.Result{Message: "Successfully processed 3 chunks from " + name, Filename: name}, nil
	}

	body, ct := multipartBody(t, "file", "report.pdf", []byte("%PDF-1.4"))
	rr := f.do("POST", "/api/upload", body, ct)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	got := decodeBody[uploadResponse](t, rr)
	if got.Filename != "report.pdf" || got.Message != "Successfully processed 3 chunks from report.pdf" {
		t.Errorf("response = %+v", got)
	}
	if string(gotData) != "%PDF-1.4" {
		t.Errorf("data = %q", gotData)
	}
	if rr.Header().Get("X-Embedding-Tokens") != "42" {
		t.Errorf("X-Embedding-Tokens = %q", rr.Header().Get("X-Embedding-Tokens"))
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not pdf", fmt.Errorf("%w: %q", domain.ErrUnsupportedFile, "a.txt"), http.StatusBadRequest, "File must be a PDF"},
		{"pipeline", errors.New("extract a.pdf: pdf contains no extractable text"), http.StatusInternalServerError,
			"extract a.pdf: pdf contains no extractable text"},
		{"quota", fmt.Errorf("index: %w", domain.ErrEmbeddingQuotaExceeded), http.StatusPaymentRequired,
			domain.ErrEmbeddingQuotaExceeded.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.ingest.uploadFn = func(string, []byte) (ingestuc.Result, error) { return ingestuc.Result{}, tt.err }

			body, ct := multipartBody(t, "file", "a.pdf", []byte("x"))
			rr := f.do("POST", "/api/upload", body, ct)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := decodeBody[errorResponse](t, rr); got.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", got.Error, tt.wantMsg)
			}
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	body, ct := multipartBody(t, "other", "a.pdf", []byte("x"))
	rr := newFixture(t, nil).do("POST", "/api/upload", body, ct)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestUpload_TooLarge(t *testing.T) {
	f := newFixture(t, nil, WithMaxUploadMB(1))
	body, ct := multipartBody(t, "file", "big.pdf", bytes.Repeat([]byte("x"), 2<<20))
	rr := f.do("POST", "/api/upload", body, ct)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestDocuments(t *testing.T) {
	rr := newFixture(t, nil).do("GET", "/api/documents", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[documentsResponse](t, rr)
	if strings.Join(got.Documents, ",") != "a.pdf,b.pdf" {
		t.Errorf("documents = %v", got.Documents)
	}
}

func TestDocuments_StoreError(t *testing.T) {
	f := newFixture(t, nil)
	f.ingest.documentsFn = func() ([]string, error) {
		return nil, fmt.Errorf("list documents: %w", &db.Error{Op: db.OpSelect, Err: errors.New("conn refused")})
	}
	rr := f.do("GET", "/api/documents", nil, "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rr.Code)
	}
	if got := decodeBody[errorResponse](t, rr); strings.Contains(got.Error, "conn refused") {
		t.Errorf("internal detail leaked: %q", got.Error)
	}
}

func TestSources(t *testing.T) {
	rr := newFixture(t, nil).do("GET", "/api/sources", nil, "")
	if got := decodeBody[sourcesResponse](t, rr); len(got.Sources) != 1 || got.Sources[0] != "a.pdf" {
		t.Errorf("sources = %v", got.Sources)
	}
}

func TestQuery_Success(t *testing.T) {
	f := newFixture(t, nil)
	f.retriever.hits = []domchunk.Hit{{Chunk: domchunk.Chunk{Text: "ctx", Source: "a.pdf", Page: 3}, Rank: 1}}

	rr := f.do("GET", "/api/query?q=what%20is%20it&files=a.pdf,%20b.pdf,", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[queryResponse](t, rr)
	if got.Answer != "forty-two" {
		t.Errorf("answer = %q", got.Answer)
	}
	if len(got.Results) != 1 || got.Results[0] != (queryResult{Content: "ctx", Source: "a.pdf", Page: 3}) {
		t.Errorf("results = %+v", got.Results)
	}
	if f.retriever.gotQuery != "what is it" || strings.Join(f.retriever.gotSources, "|") != "a.pdf|b.pdf" {
		t.Errorf("retrieve(%q, %v)", f.retriever.gotQuery, f.retriever.gotSources)
	}
	if rr.Header().Get("X-LLM-Tokens") != "7" {
		t.Errorf("X-LLM-Tokens = %q", rr.Header().Get("X-LLM-Tokens"))
	}
}

func TestQuery_NoContext(t *testing.T) {
	rr := newFixture(t, nil).do("GET", "/api/query?q=hello", nil, "")
	got := decodeBody[queryResponse](t, rr)
	if got.Answer != domanswer.NoContextText || len(got.Results) != 0 {
		t.Errorf("response = %+v", got)
	}
}

func TestQuery_MissingQ(t *testing.T) {
	f := newFixture(t, nil)
	for _, target := range []string{"/api/query", "/api/query?q=", "/api/query?q=%20"} {
		if rr := f.do("GET", target, nil, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", target, rr.Code)
		}
	}
}

func TestQuery_RateLimited(t *testing.T) {
	f := newFixture(t, nil)
	f.retriever.err = fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingProviderError, domain.ErrRateLimited)
	if rr := f.do("GET", "/api/query?q=x", nil, ""); rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestInsights(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do("GET", "/api/insights?filename=a.pdf", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[insight.Insight](t, rr); got.Summary != "s" {
		t.Errorf("insight = %+v", got)
	}

	if rr := f.do("GET", "/api/insights", nil, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("missing filename: status = %d", rr.Code)
	}
}

func TestInsights_OutcomeError(t *testing.T) {
	f := newFixture(t, nil)
	f.analyst.insightsFn = func(name string) (insight.Insight, error) {
		return insight.Insight{}, domain.NewOutcomeError("No content found for "+name, domain.ErrNotFound)
	}

	rr := f.do("GET", "/api/insights?filename=x.pdf", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[errorResponse](t, rr); got.Error != "No content found for x.pdf" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestCompare_OutcomeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"missing context",
			domain.NewOutcomeError("Could not retrieve content for one or both files.", domain.ErrNotFound),
			"Could not retrieve content for one or both files.",
		},
		{
			"store failure",
			fmt.Errorf("retrieve a.pdf: knn search: %w", &db.Error{Op: db.OpSearch, Err: errors.New("dial tcp 10.0.0.1:6379: refused")}),
			"store unavailable",
		},
		{
			"provider failure",
			fmt.Errorf("generate: %w: upstream 500 from https://api.example", domain.ErrLLMProviderError),
			"llm provider error",
		},
		{
			"malformed output",
			fmt.Errorf("%w: %w", domain.ErrMalformedOutput, errors.New("unexpected token at offset 12")),
			"malformed model output",
		},
		{"unknown", errors.New("secret internals"), "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.analyst.compareFn = func(string, string) (insight.Comparison, error) {
				return insight.Comparison{}, tt.err
			}

			rr := f.do("POST", "/api/compare?file1=a.pdf&file2=b.pdf", nil, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			if got := decodeBody[errorResponse](t, rr); got.Error != tt.want {
				t.Errorf("error = %q, want %q", got.Error, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	f := newFixture(t, nil)
	var g1, g2 string
	f.analyst.compareFn = func(a, b string) (insight.Comparison, error) {
		g1, g2 = a, b
		return insight.Comparison{Conclusion: "c"}, nil
	}

	rr := f.do("POST", "/api/compare?file1=a.pdf&file2=b.pdf", nil, "")
	if rr.Code != http.StatusOK || g1 != "a.pdf" || g2 != "b.pdf" {
		t.Fatalf("status = %d, files %q %q", rr.Code, g1, g2)
	}

	if rr := f.do("POST", "/api/compare?file1=a.pdf", nil, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("missing file2: status = %d", rr.Code)
	}
	if rr := f.do("GET", "/api/compare?file1=a.pdf&file2=b.pdf", nil, ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET compare: status = %d", rr.Code)
	}
}

func TestGenerateTestSet(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		body        string
		wantN       int
		wantSources string
	}{
		{"bare array", "/api/evaluate/generate?num_samples=3", `["a.pdf","b.pdf"]`, 3, "a.pdf,b.pdf"},
		{"object", "/api/evaluate/generate", `{"files":["a.pdf"],"num_samples":5}`, 5, "a.pdf"},
		{"query wins", "/api/evaluate/generate?num_samples=2", `{"num_samples":5}`, 2, ""},
		{"no body", "/api/evaluate/generate", "", 20, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			var body []byte
			if tt.body != "" {
				body = []byte(tt.body)
			}
			rr := f.do("POST", tt.target, body, "application/json")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
			}
			if f.eval.gotN != tt.wantN || strings.Join(f.eval.gotSources, ",") != tt.wantSources {
				t.Errorf("synthesize(%v, %d)", f.eval.gotSources, f.eval.gotN)
			}
			if got := decodeBody[testSetResponse](t, rr); len(got.TestSet) != 1 {
				t.Errorf("test_set = %+v", got.TestSet)
			}
		})
	}
}

func TestGenerateTestSet_Errors(t *testing.T) {
	f := newFixture(t, nil)
	if rr := f.do("POST", "/api/evaluate/generate?num_samples=abc", nil, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad num_samples: status = %d", rr.Code)
	}
	if rr := f.do("POST", "/api/evaluate/generate", []byte(`"nope"`), "application/json"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad body: status = %d", rr.Code)
	}

	f.eval.synthErr = domain.NewOutcomeError("No documents found matching the selected files", domain.ErrNotFound)
	rr := f.do("POST", "/api/evaluate/generate", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[errorResponse](t, rr); got.Error != "No documents found matching the selected files" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestRunSingle(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.do("POST", "/api/evaluate/run_single", []byte(`{"question":"Q?","true_answer":"A.","files":["a.pdf"]}`), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[domeval.ScoredResult](t, rr)
	if got.Score != 4 || got.Question != "Q?" {
		t.Errorf("result = %+v", got)
	}
	if strings.Join(f.eval.gotSources, ",") != "a.pdf" {
		t.Errorf("sources = %v", f.eval.gotSources)
	}

	if rr := f.do("POST", "/api/evaluate/run_single", []byte(`{"question":"Q?"}`), "application/json"); rr.Code != http.StatusBadRequest {
		t.Errorf("missing true_answer: status = %d", rr.Code)
	}

	f.eval.scoreFn = func(string, string) (domeval.ScoredResult, error) {
		return domeval.ScoredResult{}, fmt.Errorf("judge: %w", domain.ErrLLMProviderError)
	}
	rr = f.do("POST", "/api/evaluate/run_single", []byte(`{"question":"Q?","true_answer":"A."}`), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("judge failure: status = %d", rr.Code)
	}
	if got := decodeBody[errorResponse](t, rr); got.Error == "" {
		t.Error("expected error field")
	}
}

func TestRunBatch(t *testing.T) {
	f := newFixture(t, nil)
	f.eval.report = domeval.Report{
		Results: []domeval.ScoredResult{{Question: "q1", Score: 5}},
		Failures: []domeval.Failure{
			{Index: 1, Question: "q2", Err: fmt.Errorf("judge: %w: status 503 from upstream", domain.ErrLLMProviderError)},
		},
		AverageScore: 5,
		ScoredCount:  1,
	}

	rr := f.do("POST", "/api/evaluate/run", []byte(`{"items":[{"question":"q1"},{"question":"q2"}]}`), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[batchResponse](t, rr)
	if got.AverageScore != 5 || len(got.Results) != 1 || len(got.Failed) != 1 || got.Failed[0].Error != "llm provider error" {
		t.Errorf("response = %+v", got)
	}

	if rr := f.do("POST", "/api/evaluate/run", []byte(`{"items":[]}`), "application/json"); rr.Code != http.StatusBadRequest {
		t.Errorf("empty items: status = %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, []string{"secret"})

	rr := f.do("GET", "/health", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (health must bypass auth)", rr.Code)
	}
	got := decodeBody[healthResponse](t, rr)
	if got.Status != "ok" || got.Checks["valkey"] != "ok" {
		t.Errorf("health = %+v", got)
	}

	f.health.report = healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"valkey": healthuc.CheckError}}
	if rr := f.do("GET", "/health", nil, ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: status = %d", rr.Code)
	}
}

func TestAPI_RequiresAuthWhenConfigured(t *testing.T) {
	f := newFixture(t, []string{"secret"})

	if rr := f.do("GET", "/api/documents", nil, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "/api/documents", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with token: status = %d", rr.Code)
	}
}

func TestRouter_RequestIDAndCORS(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest("GET", "/api/documents", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRouter_NotFound(t *testing.T) {
	rr := newFixture(t, nil).do("GET", "/api/nope", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if got := decodeBody[errorResponse](t, rr); got.Error != msgInternal {
		t.Errorf("error = %q", got.Error)
	}
}
