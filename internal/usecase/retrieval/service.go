// Package retrieval finds the chunks most relevant to a question.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
)

// DefaultK is the number of chunks handed to the answer prompt.
const DefaultK = 5

// Searcher is the index gateway subset used here.
type Searcher interface {
	Search(ctx context.Context, query string, k int, f filter.Expression) ([]domchunk.Hit, error)
}

// Service runs filtered similarity search.
type Service struct {
	index Searcher
	k     int
}

// New creates a retrieval service; k <= 0 uses DefaultK.
func New(index Searcher, k int) *Service {
	if k <= 0 {
		k = DefaultK
	}
	return &Service{index: index, k: k}
}

// Retrieve returns up to k chunks for query, restricted to sources when given.
func (s *Service) Retrieve(ctx context.Context, query string, sources []string) ([]domchunk.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidArgument)
	}

	f, err := filter.BySources(sources)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	hits, err := s.index.Search(ctx, query, s.k, f)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return hits, nil
}
