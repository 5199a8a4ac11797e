package index

import (
	"context"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
)

// Repository defines chunk storage.
type Repository interface {
	EnsureIndex(ctx context.Context) (bool, error)
	Put(ctx context.Context, chunks []domchunk.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int, f filter.Expression) ([]domchunk.Hit, error)
	List(ctx context.Context, f filter.Expression) ([]domchunk.Chunk, error)
	Sources(ctx context.Context) ([]string, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
