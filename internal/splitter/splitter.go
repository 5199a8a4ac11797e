// Package splitter cuts page text into overlapping chunks with recorded start offsets.
package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// Piece is one chunk of a page. Start is a rune offset into the page text.
type Piece struct {
	Text  string
	Start int
}

// Splitter is a recursive character splitter (paragraph, line, word, char).
type Splitter struct {
	inner   textsplitter.RecursiveCharacter
	overlap int
}

// New creates a splitter. Sizes are measured in runes.
func New(chunkSize, chunkOverlap int) *Splitter {
	return &Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		overlap: chunkOverlap,
	}
}

// Split returns the chunks of text in order.
func (s *Splitter) Split(text string) ([]Piece, error) {
	parts, err := s.inner.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	pieces := make([]Piece, 0, len(parts))
	prevStart, prevLen := -1, 0
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		start := locate(text, part, prevStart, prevLen, s.overlap)
		pieces = append(pieces, Piece{Text: part, Start: start})
		if start >= 0 {
			prevStart, prevLen = start, utf8.RuneCountInString(part)
		}
	}
	return pieces, nil
}

// locate finds part in text searching forward from where the previous chunk
// could overlap. Returns -1 when the splitter reshaped whitespace and the
// chunk is not a verbatim substring.
func locate(text, part string, prevStart, prevLen, overlap int) int {
	from := 0
	if prevStart >= 0 {
		from = max(prevStart+prevLen-overlap, prevStart+1, 0)
	}
	byteFrom := runeToByte(text, from)
	if i := strings.Index(text[byteFrom:], part); i >= 0 {
		return from + utf8.RuneCountInString(text[byteFrom:byteFrom+i])
	}
	if i := strings.Index(text, part); i >= 0 {
		return utf8.RuneCountInString(text[:i])
	}
	return -1
}

func runeToByte(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runes {
			return i
		}
		n++
	}
	return len(s)
}
