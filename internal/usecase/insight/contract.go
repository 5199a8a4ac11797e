package insight

import (
	"context"

	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
)

// Retriever finds chunks for a query, restricted to the given files.
type Retriever interface {
	Retrieve(ctx context.Context, query string, sources []string) ([]domchunk.Hit, error)
}
