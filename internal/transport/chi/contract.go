package chi

import (
	"context"

	domanswer "github.com/kailas-cloud/docinsight/internal/domain/answer"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	domeval "github.com/kailas-cloud/docinsight/internal/domain/evaluation"
	"github.com/kailas-cloud/docinsight/internal/domain/insight"
	authuc "github.com/kailas-cloud/docinsight/internal/usecase/auth"
	healthuc "github.com/kailas-cloud/docinsight/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docinsight/internal/usecase/ingest"
)

// Ingestor handles uploads and the document catalog.
type Ingestor interface {
	Upload(ctx context.Context, filename string, data []byte) (ingestuc.Result, error)
	Documents(ctx context.Context) ([]string, error)
}

// SourceLister lists filenames present in the vector index.
type SourceLister interface {
	ListSources(ctx context.Context) ([]string, error)
}

// Retriever finds chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, sources []string) ([]domchunk.Hit, error)
}

// Answerer turns retrieved chunks into an answer.
type Answerer interface {
	Answer(ctx context.Context, query string, hits []domchunk.Hit) domanswer.Answer
}

// Analyst produces insights and comparisons.
type Analyst interface {
	Insights(ctx context.Context, filename string) (insight.Insight, error)
	Compare(ctx context.Context, file1, file2 string) (insight.Comparison, error)
}

// Evaluator synthesizes and scores test sets.
type Evaluator interface {
	Synthesize(ctx context.Context, sources []string, n int) ([]domeval.QAItem, error)
	Score(ctx context.Context, question, trueAnswer string, sources []string) (domeval.ScoredResult, error)
	RunBatch(ctx context.Context, items []domeval.QAItem, sources []string) (domeval.Report, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Authenticator registers accounts and exchanges credentials for tokens.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (authuc.Token, error)
	Login(ctx context.Context, email, password string) (authuc.Token, error)
}

// TokenVerifier validates access tokens issued by the Authenticator.
type TokenVerifier interface {
	Verify(token string) (authuc.Principal, error)
}
