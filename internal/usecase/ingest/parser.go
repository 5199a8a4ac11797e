package ingest

import "github.com/kailas-cloud/docinsight/internal/parser/pdf"

// PDFParser adapts the pdf package to Parser.
type PDFParser struct{}

// Extract implements Parser.
func (PDFParser) Extract(data []byte) ([]pdf.Page, error) { return pdf.Extract(data) }
