// Package chunk holds the indexed unit of document text.
package chunk

import (
	"errors"
	"fmt"
)

// Chunk is a span of page text tagged with its origin. Immutable once indexed.
type Chunk struct {
	Text       string
	Source     string // original upload filename
	Page       int    // 0-based page number
	StartIndex int    // rune offset of Text within its page, UnknownStart if not located
}

// UnknownStart marks a chunk whose text is not a verbatim substring of its page.
const UnknownStart = -1

// New validates and creates a Chunk.
func New(text, source string, page, startIndex int) (Chunk, error) {
	if text == "" {
		return Chunk{}, errors.New("chunk text is required")
	}
	if source == "" {
		return Chunk{}, errors.New("chunk source is required")
	}
	if page < 0 {
		return Chunk{}, fmt.Errorf("page must not be negative, got %d", page)
	}
	if startIndex < UnknownStart {
		return Chunk{}, fmt.Errorf("start index must be >= %d, got %d", UnknownStart, startIndex)
	}
	return Chunk{Text: text, Source: source, Page: page, StartIndex: startIndex}, nil
}

// Hit is a chunk returned by similarity search.
type Hit struct {
	Chunk
	Score float64 // cosine similarity, higher is closer
	Rank  int     // 1-based position in the result list
}

// Texts returns the text of every hit in order.
func Texts(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Text
	}
	return out
}
