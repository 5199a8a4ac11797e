// Package answer turns retrieved context into a grounded answer.
package answer

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domanswer "github.com/kailas-cloud/docinsight/internal/domain/answer"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/logger"
)

// Generator produces answers with one LLM call per question.
type Generator struct {
	llm         domain.Completer
	temperature float32
}

// New creates an answer generator.
func New(llm domain.Completer, temperature float32) *Generator {
	return &Generator{llm: llm, temperature: temperature}
}

// Answer never fails: an empty context or an LLM error yields a fixed text
// and the outcome says which.
func (g *Generator) Answer(ctx context.Context, query string, hits []domchunk.Hit) domanswer.Answer {
	if len(hits) == 0 {
		return domanswer.NoContext()
	}

	res, err := g.llm.Complete(ctx, buildPrompt(query, hits), g.temperature)
	if err != nil {
		logger.FromContext(ctx).Error("Answer generation failed",
			zap.Int("context_chunks", len(hits)),
			zap.Error(err),
		)
		return domanswer.Failed(err)
	}
	return domanswer.Generated(res.Text)
}
