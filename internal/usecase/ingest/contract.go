package ingest

import (
	"context"

	domcatalog "github.com/kailas-cloud/docinsight/internal/domain/catalog"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/parser/pdf"
	"github.com/kailas-cloud/docinsight/internal/splitter"
)

// Parser extracts per-page text from a document body.
type Parser interface {
	Extract(data []byte) ([]pdf.Page, error)
}

// Splitter cuts page text into chunks.
type Splitter interface {
	Split(text string) ([]splitter.Piece, error)
}

// Indexer embeds and stores chunks.
type Indexer interface {
	Index(ctx context.Context, chunks []domchunk.Chunk) error
}

// Catalog records uploaded filenames.
type Catalog interface {
	Add(ctx context.Context, filename string) (bool, error)
	List(ctx context.Context) ([]domcatalog.Document, error)
}
