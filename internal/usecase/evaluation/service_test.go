package evaluation

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domanswer "github.com/kailas-cloud/docinsight/internal/domain/answer"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	domeval "github.com/kailas-cloud/docinsight/internal/domain/evaluation"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
	"github.com/kailas-cloud/docinsight/internal/metrics"
)

type mockLister struct {
	chunks []domchunk.Chunk
	err    error
}

func (m *mockLister) ListChunks(_ context.Context, _ filter.Expression) ([]domchunk.Chunk, error) {
	return m.chunks, m.err
}

type mockRetriever struct {
	hits []domchunk.Hit
	err  error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ []string) ([]domchunk.Hit, error) {
	return m.hits, m.err
}

type mockAnswerer struct{ text string }

func (m *mockAnswerer) Answer(_ context.Context, _ string, _ []domchunk.Hit) domanswer.Answer {
	return domanswer.Generated(m.text)
}

// scriptedCompleter returns responses[i] for the i-th call.
type scriptedCompleter struct {
	responses []string
	errs      []error
	prompts   []string
}

func (m *scriptedCompleter) Complete(_ context.Context, prompt string, _ float32) (domain.Completion, error) {
	i := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	text := ""
	if i < len(m.responses) {
		text = m.responses[i]
	}
	return domain.Completion{Text: text}, err
}

type fixedSampler struct {
	picks     []int
	gotPop, n int
}

func (f *fixedSampler) Sample(population, n int) []int {
	f.gotPop, f.n = population, n
	return f.picks
}

func corpus() []domchunk.Chunk {
	return []domchunk.Chunk{
		{Text: "alpha text", Source: "a.pdf"},
		{Text: "beta text", Source: "b.pdf"},
		{Text: "gamma text", Source: "a.pdf"},
	}
}

func TestSynthesize_Success(t *testing.T) {
	mc := &scriptedCompleter{responses: []string{
		"Question: What is alpha?\nAnswer: The first.",
		"Question: What is gamma?\nAnswer: The third.",
	}}
	sampler := &fixedSampler{picks: []int{0, 1}}
	svc := New(&mockLister{chunks: corpus()}, nil, nil, mc, WithSampler(sampler))

	items, err := svc.Synthesize(context.Background(), []string{"a.pdf"}, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 2, sampler.gotPop, "only a.pdf chunks are eligible")
	assert.Equal(t, domeval.QAItem{
		Question: "What is alpha?", TrueAnswer: "The first.",
		SourceChunk: "alpha text", SourceFile: "a.pdf",
	}, items[0])
	assert.Equal(t, "gamma text", items[1].SourceChunk)
	assert.Contains(t, mc.prompts[0], "(a.pdf)")
}

func TestSynthesize_DropsIncompleteAndFailed(t *testing.T) {
	mc := &scriptedCompleter{
		responses: []string{"", "Question: only a question", "Question: Q?\nAnswer: A."},
		errs:      []error{errors.New("boom")},
	}
	svc := New(&mockLister{chunks: corpus()}, nil, nil, mc, WithSampler(&fixedSampler{picks: []int{0, 1, 2}}))

	items, err := svc.Synthesize(context.Background(), nil, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Q?", items[0].Question)
	assert.Len(t, mc.prompts, 3)
}

func TestSynthesize_NoDocuments(t *testing.T) {
	svc := New(&mockLister{}, nil, nil, &scriptedCompleter{})
	_, err := svc.Synthesize(context.Background(), nil, 5)
	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "No documents found")
}

func TestSynthesize_NoMatchingDocuments(t *testing.T) {
	mc := &scriptedCompleter{}
	svc := New(&mockLister{chunks: corpus()}, nil, nil, mc)
	_, err := svc.Synthesize(context.Background(), []string{"zzz.pdf"}, 5)
	assert.ErrorIs(t, err, ErrNoMatchingDocuments)
	assert.EqualError(t, err, "No documents found matching the selected files")
	assert.Empty(t, mc.prompts)
}

func TestSynthesize_InvalidCount(t *testing.T) {
	svc := New(&mockLister{chunks: corpus()}, nil, nil, &scriptedCompleter{})
	_, err := svc.Synthesize(context.Background(), nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSynthesize_ListError(t *testing.T) {
	svc := New(&mockLister{err: domain.ErrStoreUnavailable}, nil, nil, &scriptedCompleter{})
	_, err := svc.Synthesize(context.Background(), nil, 1)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestRandomSampler(t *testing.T) {
	var s RandomSampler

	picks := s.Sample(10, 4)
	require.Len(t, picks, 4)
	seen := map[int]bool{}
	for _, p := range picks {
		assert.False(t, seen[p], "duplicate pick %d without replacement", p)
		assert.True(t, p >= 0 && p < 10)
		seen[p] = true
	}

	boot := s.Sample(2, 7)
	require.Len(t, boot, 7)
	for _, p := range boot {
		assert.True(t, p >= 0 && p < 2)
	}

	assert.Nil(t, s.Sample(0, 3))
}

func TestScore(t *testing.T) {
	metrics.Register()
	before := scoreSamples(t)

	hits := []domchunk.Hit{{Chunk: domchunk.Chunk{Text: "ctx one"}}, {Chunk: domchunk.Chunk{Text: "ctx two"}}}
	judge := "Score: 4/5\nReasoning: mostly right"
	mc := &scriptedCompleter{responses: []string{judge}}
	svc := New(nil, &mockRetriever{hits: hits}, &mockAnswerer{text: "generated"}, mc)

	got, err := svc.Score(context.Background(), "Q?", "A.", nil)
	require.NoError(t, err)

	assert.Equal(t, 4, got.Score)
	assert.Equal(t, judge, got.Feedback)
	assert.Equal(t, "generated", got.GeneratedAnswer)
	assert.Equal(t, []string{"ctx one", "ctx two"}, got.RelevantChunks)
	assert.Contains(t, mc.prompts[0], "True Answer: A.")
	assert.Contains(t, mc.prompts[0], "Generated Answer: generated")
	assert.Equal(t, before+1, scoreSamples(t))
}

func scoreSamples(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.EvaluationScore.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestScore_Unparseable(t *testing.T) {
	mc := &scriptedCompleter{responses: []string{"Score: excellent"}}
	svc := New(nil, &mockRetriever{}, &mockAnswerer{text: "x"}, mc)

	got, err := svc.Score(context.Background(), "Q?", "A.", nil)
	require.NoError(t, err)
	assert.Zero(t, got.Score)
	assert.Equal(t, "Score: excellent", got.Feedback)
}

func TestScore_JudgeError(t *testing.T) {
	mc := &scriptedCompleter{errs: []error{domain.ErrLLMProviderError}}
	svc := New(nil, &mockRetriever{}, &mockAnswerer{}, mc)

	_, err := svc.Score(context.Background(), "Q?", "A.", nil)
	assert.ErrorIs(t, err, domain.ErrLLMProviderError)
}

func TestScore_RetrieveError(t *testing.T) {
	mc := &scriptedCompleter{}
	svc := New(nil, &mockRetriever{err: domain.ErrInvalidArgument}, &mockAnswerer{}, mc)

	_, err := svc.Score(context.Background(), "", "A.", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Empty(t, mc.prompts)
}

func TestRunBatch(t *testing.T) {
	mc := &scriptedCompleter{
		responses: []string{"Score: 5", "", "Score: 2", "no score here"},
		errs:      []error{nil, errors.New("judge down")},
	}
	svc := New(nil, &mockRetriever{}, &mockAnswerer{text: "g"}, mc)
	items := []domeval.QAItem{{Question: "q1"}, {Question: "q2"}, {Question: "q3"}, {Question: "q4"}}

	report, err := svc.RunBatch(context.Background(), items, nil)
	require.NoError(t, err)

	assert.Len(t, report.Results, 3)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Index)
	assert.Equal(t, "q2", report.Failures[0].Question)
	assert.Equal(t, 2, report.ScoredCount)
	assert.InDelta(t, 3.5, report.AverageScore, 1e-9)
}

func TestRunBatch_Empty(t *testing.T) {
	svc := New(nil, &mockRetriever{}, &mockAnswerer{}, &scriptedCompleter{})
	report, err := svc.RunBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, report.AverageScore)
	assert.Empty(t, report.Results)
}

func TestRunBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := New(nil, &mockRetriever{}, &mockAnswerer{}, &scriptedCompleter{})
	_, err := svc.RunBatch(ctx, []domeval.QAItem{{Question: "q"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
