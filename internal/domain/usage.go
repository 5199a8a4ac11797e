package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage collects token consumption for a single HTTP request.
// The handler puts a pointer into the context before calling the service;
// embedders and completers add to it; the handler reports it in response headers.
type Usage struct {
	mu              sync.Mutex
	embeddingTokens int
	llmTokens       int
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records embedding tokens. Safe on a nil receiver.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += n
	u.mu.Unlock()
}

// AddLLMTokens records chat completion tokens. Safe on a nil receiver.
func (u *Usage) AddLLMTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.llmTokens += n
	u.mu.Unlock()
}

// Tokens returns embedding and LLM token totals.
func (u *Usage) Tokens() (embedding, llm int) {
	if u == nil {
		return 0, 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.embeddingTokens, u.llmTokens
}
