package evaluation

import (
	"context"

	domanswer "github.com/kailas-cloud/docinsight/internal/domain/answer"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
)

// ChunkLister enumerates indexed chunks.
type ChunkLister interface {
	ListChunks(ctx context.Context, f filter.Expression) ([]domchunk.Chunk, error)
}

// Retriever finds chunks for a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, sources []string) ([]domchunk.Hit, error)
}

// Answerer produces the answer under evaluation.
type Answerer interface {
	Answer(ctx context.Context, query string, hits []domchunk.Hit) domanswer.Answer
}
