package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Minute

// Client talks to one docinsight server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	apiKey  string
}

// New creates a Client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("docinsight: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("docinsight: base url %q must include scheme and host", baseURL)
	}

	cfg := &config{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}
	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{baseURL: u, http: hc, apiKey: cfg.apiKey}, nil
}

// Upload sends a PDF for indexing.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("docinsight: build upload: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return UploadResult{}, fmt.Errorf("docinsight: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("docinsight: build upload: %w", err)
	}

	var out UploadResult
	err = c.do(ctx, http.MethodPost, "/api/upload", nil, &buf, mw.FormDataContentType(), &out)
	return out, err
}

// Documents lists catalog filenames, oldest upload first.
func (c *Client) Documents(ctx context.Context) ([]string, error) {
	var out struct {
		Documents []string `json:"documents"`
	}
	err := c.do(ctx, http.MethodGet, "/api/documents", nil, nil, "", &out)
	return out.Documents, err
}

// Sources lists the distinct filenames present in the vector index.
func (c *Client) Sources(ctx context.Context) ([]string, error) {
	var out struct {
		Sources []string `json:"sources"`
	}
	err := c.do(ctx, http.MethodGet, "/api/sources", nil, nil, "", &out)
	return out.Sources, err
}

// Query asks a question, optionally restricted to files.
func (c *Client) Query(ctx context.Context, q string, files ...string) (QueryResponse, error) {
	params := url.Values{"q": {q}}
	if len(files) > 0 {
		params.Set("files", strings.Join(files, ","))
	}
	var out QueryResponse
	err := c.do(ctx, http.MethodGet, "/api/query", params, nil, "", &out)
	return out, err
}

// Insights summarizes filename.
func (c *Client) Insights(ctx context.Context, filename string) (Insight, error) {
	var out Insight
	err := c.do(ctx, http.MethodGet, "/api/insights", url.Values{"filename": {filename}}, nil, "", &out)
	return out, err
}

// Compare contrasts two documents.
func (c *Client) Compare(ctx context.Context, file1, file2 string) (Comparison, error) {
	var out Comparison
	err := c.do(ctx, http.MethodPost, "/api/compare", url.Values{"file1": {file1}, "file2": {file2}}, nil, "", &out)
	return out, err
}

// GenerateTestSet synthesizes n question/answer pairs from files (all files when empty).
func (c *Client) GenerateTestSet(ctx context.Context, files []string, n int) ([]QAItem, error) {
	if files == nil {
		files = []string{}
	}
	body, err := jsonBody(files)
	if err != nil {
		return nil, err
	}
	var out struct {
		TestSet []QAItem `json:"test_set"`
	}
	params := url.Values{"num_samples": {strconv.Itoa(n)}}
	err = c.do(ctx, http.MethodPost, "/api/evaluate/generate", params, body, "application/json", &out)
	return out.TestSet, err
}

// RunSingle scores one question against its reference answer.
func (c *Client) RunSingle(ctx context.Context, question, trueAnswer string, files []string) (ScoredResult, error) {
	body, err := jsonBody(map[string]any{"question": question, "true_answer": trueAnswer, "files": files})
	if err != nil {
		return ScoredResult{}, err
	}
	var out ScoredResult
	err = c.do(ctx, http.MethodPost, "/api/evaluate/run_single", nil, body, "application/json", &out)
	return out, err
}

// Register creates an account and returns its first access token.
func (c *Client) Register(ctx context.Context, email, password string) (Token, error) {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return Token{}, err
	}
	var out Token
	err = c.do(ctx, http.MethodPost, "/auth/register", nil, body, "application/json", &out)
	return out, err
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	form := url.Values{"username": {email}, "password": {password}}
	var out Token
	err := c.do(ctx, http.MethodPost, "/auth/token", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	return out, err
}

// RunBatch scores items server-side.
func (c *Client) RunBatch(ctx context.Context, items []QAItem, files []string) (BatchReport, error) {
	body, err := jsonBody(map[string]any{"items": items, "files": files})
	if err != nil {
		return BatchReport{}, err
	}
	var out BatchReport
	err = c.do(ctx, http.MethodPost, "/api/evaluate/run", nil, body, "application/json", &out)
	return out, err
}

// Health returns the service health. A degraded service is not an error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, "", &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && out.Status != "" {
		return out, nil
	}
	return out, err
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docinsight: encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	params url.Values,
	body io.Reader,
	contentType string,
	out any,
) error {
	u := *c.baseURL
	u.Path += path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("docinsight: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("docinsight: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("docinsight: read response: %w", err)
	}

	var envelope struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := envelope.Error
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		// Health reports its body with 503.
		if out != nil && len(data) > 0 {
			_ = json.Unmarshal(data, out)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if envelope.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("docinsight: decode response: %w", err)
	}
	return nil
}
