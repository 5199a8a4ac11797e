package answer

import (
	"fmt"
	"strings"

	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
)

const instructions = `You are a careful research assistant. Answer the question using ONLY the context documents below.
If the context does not contain the answer, say politely that you do not have enough information.
Cite the source filename and page number for every fact you use, for example (Source: report.pdf, Page 3).`

// buildPrompt lists every chunk with its source and page ahead of the question.
func buildPrompt(query string, hits []domchunk.Hit) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nContext:\n")
	for _, h := range hits {
		fmt.Fprintf(&b, "Source: %s (Page %d)\nContent: %s\n\n", h.Source, h.Page, h.Text)
	}
	fmt.Fprintf(&b, "Question: %s\n\nAnswer:", query)
	return b.String()
}
