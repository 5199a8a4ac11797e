package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
	"github.com/kailas-cloud/docinsight/internal/metrics"
)

func chatServer(t *testing.T, handler func(req map[string]any) (int, any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func completionBody(text string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": text},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
	}
}

func TestChat_Complete(t *testing.T) {
	server := chatServer(t, func(req map[string]any) (int, any) {
		if req["model"] != "llama-3.1-8b-instant" {
			t.Errorf("model = %v", req["model"])
		}
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 1 {
			t.Fatalf("expected one message, got %d", len(msgs))
		}
		msg := msgs[0].(map[string]any)
		if msg["role"] != "user" || msg["content"] != "hello?" {
			t.Errorf("unexpected message: %v", msg)
		}
		return http.StatusOK, completionBody("  hi there \n")
	})

	chat := NewChat(&ChatConfig{
		Name: "groq", APIKey: "k", BaseURL: server.URL, Model: "llama-3.1-8b-instant", Logger: zap.NewNop(),
	})

	before := testutil.ToFloat64(metrics.LLMRequestsTotal.WithLabelValues("groq", "llama-3.1-8b-instant", "success"))
	ctx, usage := domain.NewContextWithUsage(context.Background())

	got, err := chat.Complete(ctx, "hello?", 0)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Text != "hi there" {
		t.Errorf("Text = %q, expected trimmed reply", got.Text)
	}
	if got.Provider != "groq" || got.Model != "llama-3.1-8b-instant" {
		t.Errorf("provider/model = %s/%s", got.Provider, got.Model)
	}
	if got.PromptTokens != 12 || got.CompletionTokens != 3 {
		t.Errorf("tokens = %d/%d", got.PromptTokens, got.CompletionTokens)
	}
	if _, llm := usage.Tokens(); llm != 15 {
		t.Errorf("usage llm tokens = %d, expected 15", llm)
	}

	after := testutil.ToFloat64(metrics.LLMRequestsTotal.WithLabelValues("groq", "llama-3.1-8b-instant", "success"))
	if after-before != 1 {
		t.Errorf("success counter delta = %v, expected 1", after-before)
	}
}

func TestChat_NoChoices(t *testing.T) {
	server := chatServer(t, func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"id": "x", "choices": []any{}}
	})
	chat := NewChat(&ChatConfig{Name: "openai", APIKey: "k", BaseURL: server.URL, Model: "gpt-3.5-turbo"})

	_, err := chat.Complete(context.Background(), "q", 0)
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
}

func TestChat_APIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		rateLimited bool
	}{
		{"server error", http.StatusInternalServerError, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := chatServer(t, func(map[string]any) (int, any) {
				return tt.status, map[string]any{"error": map[string]any{"message": "boom", "type": "x"}}
			})
			chat := NewChat(&ChatConfig{Name: "google", APIKey: "k", BaseURL: server.URL, Model: "gemini-2.0-flash"})

			_, err := chat.Complete(context.Background(), "q", 0)
			if !errors.Is(err, domain.ErrLLMProviderError) {
				t.Fatalf("expected ErrLLMProviderError, got %v", err)
			}
			if errors.Is(err, domain.ErrRateLimited) != tt.rateLimited {
				t.Errorf("rate limited = %v, expected %v (%v)", !tt.rateLimited, tt.rateLimited, err)
			}
		})
	}
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"quota exceeded"}`, "quota exceeded"},
		{`{"error":{"message":"bad key"}}`, "bad key"},
		{`not json`, ""},
		{`{}`, ""},
	}
	for _, tt := range tests {
		if got := extractDetail([]byte(tt.body)); got != tt.want {
			t.Errorf("extractDetail(%s) = %q, expected %q", tt.body, got, tt.want)
		}
	}
}
