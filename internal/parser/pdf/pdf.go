// Package pdf extracts plain text from PDF documents page by page.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when no page yields extractable text.
var ErrNoText = errors.New("pdf contains no extractable text")

// Page is the text of one page. Number is 0-based.
type Page struct {
	Number int
	Text   string
}

// Extract reads every page of data. Pages without text are skipped.
// The underlying reader panics on some malformed files; that surfaces as an error.
func Extract(data []byte) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("read pdf: malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i-1, err)
		}
		text = Sanitize(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i - 1, Text: text})
	}

	if len(pages) == 0 {
		return nil, ErrNoText
	}
	return pages, nil
}

// Sanitize drops NUL and non-whitespace control characters that extractors leave behind.
func Sanitize(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\r', r == '\t':
			return r
		case r < 0x20, r == 0x7f:
			return -1
		}
		return r
	}, s))
}
