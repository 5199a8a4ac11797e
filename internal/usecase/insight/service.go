// Package insight summarizes one document or compares two, using structured LLM output.
package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/domain/insight"
	"github.com/kailas-cloud/docinsight/internal/llmtext"
	"github.com/kailas-cloud/docinsight/internal/logger"
)

// ErrNoCompareContext is returned when either file has no indexed content.
var ErrNoCompareContext = domain.NewOutcomeError("Could not retrieve content for one or both files.", domain.ErrNotFound)

// Service produces insights and comparisons.
type Service struct {
	retriever   Retriever
	llm         domain.Completer
	temperature float32
}

// New creates an insight service.
func New(retriever Retriever, llm domain.Completer, temperature float32) *Service {
	return &Service{retriever: retriever, llm: llm, temperature: temperature}
}

// Insights summarizes filename from its most summary-like chunks.
func (s *Service) Insights(ctx context.Context, filename string) (insight.Insight, error) {
	if strings.TrimSpace(filename) == "" {
		return insight.Insight{}, fmt.Errorf("%w: filename is required", domain.ErrInvalidArgument)
	}

	hits, err := s.retriever.Retrieve(ctx, insightQuery, []string{filename})
	if err != nil {
		return insight.Insight{}, fmt.Errorf("retrieve %s: %w", filename, err)
	}
	if len(hits) == 0 {
		return insight.Insight{}, domain.NewOutcomeError("No content found for "+filename, domain.ErrNotFound)
	}

	var out insight.Insight
	if err := s.completeJSON(ctx, insightPrompt(joinTexts(domchunk.Texts(hits), "\n\n")), &out); err != nil {
		return insight.Insight{}, err
	}
	out = out.Normalize()
	if err := out.Validate(); err != nil {
		return insight.Insight{}, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	return out, nil
}

// Compare contrasts file1 and file2. Either file without content fails before any LLM call.
func (s *Service) Compare(ctx context.Context, file1, file2 string) (insight.Comparison, error) {
	if strings.TrimSpace(file1) == "" || strings.TrimSpace(file2) == "" {
		return insight.Comparison{}, fmt.Errorf("%w: both file1 and file2 are required", domain.ErrInvalidArgument)
	}

	context1, err := s.fileContext(ctx, file1)
	if err != nil {
		return insight.Comparison{}, err
	}
	context2, err := s.fileContext(ctx, file2)
	if err != nil {
		return insight.Comparison{}, err
	}
	if context1 == "" || context2 == "" {
		return insight.Comparison{}, ErrNoCompareContext
	}

	var out insight.Comparison
	if err := s.completeJSON(ctx, comparePrompt(file1, context1, file2, context2), &out); err != nil {
		return insight.Comparison{}, err
	}
	out = out.Normalize()
	if err := out.Validate(); err != nil {
		return insight.Comparison{}, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	return out, nil
}

func (s *Service) fileContext(ctx context.Context, filename string) (string, error) {
	hits, err := s.retriever.Retrieve(ctx, compareQuery, []string{filename})
	if err != nil {
		return "", fmt.Errorf("retrieve %s: %w", filename, err)
	}
	return joinTexts(domchunk.Texts(hits), "\n"), nil
}

func (s *Service) completeJSON(ctx context.Context, prompt string, v any) error {
	res, err := s.llm.Complete(ctx, prompt, s.temperature)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if err := llmtext.DecodeJSON(res.Text, v); err != nil {
		logger.FromContext(ctx).Warn("Unparseable structured output",
			zap.String("provider", res.Provider),
			zap.Int("response_len", len(res.Text)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	return nil
}
