// Package evaluation synthesizes QA test sets from indexed chunks and scores
// the answer pipeline against them with an LLM judge.
package evaluation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	domeval "github.com/kailas-cloud/docinsight/internal/domain/evaluation"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
	"github.com/kailas-cloud/docinsight/internal/llmtext"
	"github.com/kailas-cloud/docinsight/internal/logger"
	"github.com/kailas-cloud/docinsight/internal/metrics"
)

// DefaultSamples is the test set size when the caller does not ask for one.
const DefaultSamples = 20

// Errors returned by Synthesize when there is nothing to sample.
var (
	ErrNoDocuments         = domain.NewOutcomeError("No documents found", domain.ErrNotFound)
	ErrNoMatchingDocuments = domain.NewOutcomeError("No documents found matching the selected files", domain.ErrNotFound)
)

// Service runs synthesis and scoring. Items are processed one at a time.
type Service struct {
	chunks      ChunkLister
	retriever   Retriever
	answerer    Answerer
	llm         domain.Completer
	sampler     Sampler
	temperature float32
}

// Option configures a Service.
type Option func(*Service)

// WithSampler replaces the random sampler.
func WithSampler(s Sampler) Option {
	return func(svc *Service) { svc.sampler = s }
}

// WithTemperature sets the temperature for question and judge prompts.
func WithTemperature(t float32) Option {
	return func(svc *Service) { svc.temperature = t }
}

// New creates an evaluation service.
func New(chunks ChunkLister, retriever Retriever, answerer Answerer, llm domain.Completer, opts ...Option) *Service {
	s := &Service{
		chunks:    chunks,
		retriever: retriever,
		answerer:  answerer,
		llm:       llm,
		sampler:   RandomSampler{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize samples n chunks and asks the model for one question/answer pair per chunk.
// Pairs that fail to generate or parse are dropped, so fewer than n items may come back.
func (s *Service) Synthesize(ctx context.Context, sources []string, n int) ([]domeval.QAItem, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: num_samples must be positive, got %d", domain.ErrInvalidArgument, n)
	}

	eligible, err := s.eligibleChunks(ctx, sources)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	picks := s.sampler.Sample(len(eligible), n)
	log.Info("Generating QA pairs", zap.Int("samples", len(picks)), zap.Int("eligible_chunks", len(eligible)))

	items := make([]domeval.QAItem, 0, len(picks))
	for _, idx := range picks {
		c := eligible[idx]
		res, err := s.llm.Complete(ctx, qaPrompt(c.Source, c.Text), s.temperature)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("synthesize: %w", ctx.Err())
			}
			log.Warn("QA pair generation failed", zap.String("source", c.Source), zap.Error(err))
			continue
		}

		q, a := llmtext.ParseQA(res.Text)
		item := domeval.QAItem{Question: q, TrueAnswer: a, SourceChunk: c.Text, SourceFile: c.Source}
		if !item.Complete() {
			log.Debug("QA pair dropped: missing question or answer", zap.String("source", c.Source))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// eligibleChunks lists the whole index first so an empty index and an
// unmatched filter produce different errors.
func (s *Service) eligibleChunks(ctx context.Context, sources []string) ([]domchunk.Chunk, error) {
	all, err := s.chunks.ListChunks(ctx, filter.Expression{})
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	if len(all) == 0 {
		return nil, ErrNoDocuments
	}

	f, err := filter.BySources(sources)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	if f.IsEmpty() {
		return all, nil
	}

	eligible := make([]domchunk.Chunk, 0, len(all))
	for _, c := range all {
		if f.Matches(map[string]string{filter.SourceField: c.Source}) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoMatchingDocuments
	}
	return eligible, nil
}

// Score runs retrieval and answering for question, then has the model grade
// the generated answer against trueAnswer.
func (s *Service) Score(ctx context.Context, question, trueAnswer string, sources []string) (domeval.ScoredResult, error) {
	hits, err := s.retriever.Retrieve(ctx, question, sources)
	if err != nil {
		return domeval.ScoredResult{}, fmt.Errorf("retrieve: %w", err)
	}
	ans := s.answerer.Answer(ctx, question, hits)

	res, err := s.llm.Complete(ctx, judgePrompt(question, trueAnswer, ans.Text), s.temperature)
	if err != nil {
		return domeval.ScoredResult{}, fmt.Errorf("judge: %w", err)
	}

	out := domeval.ScoredResult{
		Question:        question,
		TrueAnswer:      trueAnswer,
		GeneratedAnswer: ans.Text,
		Score:           llmtext.ParseScore(res.Text),
		Feedback:        res.Text,
		RelevantChunks:  domchunk.Texts(hits),
	}
	if out.Scored() {
		metrics.EvaluationScore.Observe(float64(out.Score))
	}
	return out, nil
}

// RunBatch scores items in order. Failed items are reported, not fatal,
// unless the context is done.
func (s *Service) RunBatch(ctx context.Context, items []domeval.QAItem, sources []string) (domeval.Report, error) {
	report := domeval.Report{Results: make([]domeval.ScoredResult, 0, len(items))}

	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return domeval.Report{}, fmt.Errorf("run batch: %w", err)
		}
		r, err := s.Score(ctx, it.Question, it.TrueAnswer, sources)
		if err != nil {
			logger.FromContext(ctx).Warn("Evaluation item failed", zap.Int("index", i), zap.Error(err))
			report.Failures = append(report.Failures, domeval.Failure{Index: i, Question: it.Question, Err: err})
			continue
		}
		report.Results = append(report.Results, r)
	}

	report.AverageScore, report.ScoredCount = domeval.Average(report.Results)
	return report, nil
}
