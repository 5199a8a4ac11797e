// Package index is the embedding and vector index gateway.
package index

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
	"github.com/kailas-cloud/docinsight/internal/logger"
)

// Service embeds chunks and queries and talks to the vector index.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates an index service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// EnsureIndex creates the HNSW index if it is missing.
func (s *Service) EnsureIndex(ctx context.Context) error {
	created, err := s.repo.EnsureIndex(ctx)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	if created {
		logger.FromContext(ctx).Info("Vector index created")
	}
	return nil
}

// Index embeds every chunk text in batches and stores one hash per chunk.
func (s *Service) Index(ctx context.Context, chunks []domchunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	res, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(res.Embeddings) != len(chunks) {
		return fmt.Errorf("embed chunks: expected %d vectors, got %d: %w",
			len(chunks), len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}

	if err := s.repo.Put(ctx, chunks, res.Embeddings); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	logger.FromContext(ctx).Debug("Chunks indexed",
		zap.Int("chunks", len(chunks)),
		zap.Int("embedding_tokens", res.TotalTokens),
	)
	return nil
}

// Search embeds query and returns up to k chunks matching f, most similar first.
func (s *Service) Search(ctx context.Context, query string, k int, f filter.Expression) ([]domchunk.Hit, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.repo.Search(ctx, emb.Embedding, k, f)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	return hits, nil
}

// ListChunks enumerates every indexed chunk matching f.
func (s *Service) ListChunks(ctx context.Context, f filter.Expression) ([]domchunk.Chunk, error) {
	chunks, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return chunks, nil
}

// ListSources returns the distinct filenames present in the index.
func (s *Service) ListSources(ctx context.Context) ([]string, error) {
	sources, err := s.repo.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}
