// Package ingest turns an uploaded PDF into indexed chunks and a catalog entry.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/logger"
)

// Result describes a finished upload.
type Result struct {
	Message  string
	Filename string
	Chunks   int
	Created  bool // false when the filename was already in the catalog
}

// Service runs the upload pipeline: parse, split, index, record.
type Service struct {
	parser   Parser
	splitter Splitter
	index    Indexer
	catalog  Catalog
}

// New creates an ingestion service.
func New(parser Parser, splitter Splitter, index Indexer, catalog Catalog) *Service {
	return &Service{parser: parser, splitter: splitter, index: index, catalog: catalog}
}

// Upload indexes every chunk of a PDF under filename. Re-uploading a known
// filename re-indexes its chunks but does not add a second catalog row.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (Result, error) {
	if !IsPDF(filename) {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFile, filename)
	}

	pages, err := s.parser.Extract(data)
	if err != nil {
		return Result{}, fmt.Errorf("extract %s: %w", filename, err)
	}

	var chunks []domchunk.Chunk
	for _, p := range pages {
		pieces, err := s.splitter.Split(p.Text)
		if err != nil {
			return Result{}, fmt.Errorf("split %s page %d: %w", filename, p.Number, err)
		}
		for _, pc := range pieces {
			c, err := domchunk.New(pc.Text, filename, p.Number, pc.Start)
			if err != nil {
				return Result{}, fmt.Errorf("chunk %s page %d: %w", filename, p.Number, err)
			}
			chunks = append(chunks, c)
		}
	}

	if err := s.index.Index(ctx, chunks); err != nil {
		return Result{}, fmt.Errorf("index %s: %w", filename, err)
	}

	created, err := s.catalog.Add(ctx, filename)
	if err != nil {
		return Result{}, fmt.Errorf("catalog %s: %w", filename, err)
	}

	logger.FromContext(ctx).Info("Document ingested",
		zap.String("filename", filename),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
		zap.Bool("new", created),
	)

	return Result{
		Message:  fmt.Sprintf("Successfully processed %d chunks from %s", len(chunks), filename),
		Filename: filename,
		Chunks:   len(chunks),
		Created:  created,
	}, nil
}

// Documents returns catalog filenames, oldest upload first.
func (s *Service) Documents(ctx context.Context) ([]string, error) {
	docs, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Filename
	}
	return out, nil
}

// IsPDF reports whether filename has a .pdf extension, ignoring case.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
