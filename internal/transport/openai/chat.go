package openai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
	"github.com/kailas-cloud/docinsight/internal/metrics"
)

// ChatConfig holds one chat completion provider's settings.
type ChatConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// Chat is a domain.Completer over an OpenAI-compatible chat completions endpoint.
type Chat struct {
	client *openai.Client
	name   string
	model  string
	logger *zap.Logger
}

// NewChat creates a chat completion provider.
func NewChat(cfg *ChatConfig) *Chat {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{
		client: newClient(cfg.APIKey, cfg.BaseURL),
		name:   cfg.Name,
		model:  cfg.Model,
		logger: logger,
	}
}

// Name returns the provider name used in logs and metrics.
func (c *Chat) Name() string { return c.name }

// Model returns the configured model id.
func (c *Chat) Model() string { return c.model }

// Complete sends prompt as a single user message.
func (c *Chat) Complete(ctx context.Context, prompt string, temperature float32) (domain.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: wireTemperature(temperature),
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.name, c.model, "error").Inc()
		return domain.Completion{}, parseAPIError(c.name+" chat", err, domain.ErrLLMProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(c.name, c.model, "error").Inc()
		return domain.Completion{}, fmt.Errorf("%s returned no choices: %w", c.name, domain.ErrLLMProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.name, c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.name, c.model).Observe(duration.Seconds())
	metrics.LLMTokensTotal.WithLabelValues(c.name, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues(c.name, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	domain.UsageFromContext(ctx).AddLLMTokens(resp.Usage.TotalTokens)

	c.logger.Debug("chat completion",
		zap.String("provider", c.name),
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return domain.Completion{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		Provider:         c.name,
		Model:            c.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// wireTemperature keeps an explicit zero on the wire: the request field is
// omitempty, and providers default an omitted temperature to 1.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
