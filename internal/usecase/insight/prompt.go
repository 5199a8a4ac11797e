package insight

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docinsight/internal/domain/insight"
)

// Fixed retrieval queries.
const (
	insightQuery = "summary of the document"
	compareQuery = "summary and key points"
)

func insightPrompt(context string) string {
	return fmt.Sprintf(`You are an AI analyst. Read the following excerpts from one document:

%s

Reply with a single JSON object and nothing else, using exactly these keys:
"summary": a concise summary of at most 3 sentences,
"key_entities": a list of the top %d key entities (people, organizations, concepts),
"topics": a list of the top %d main topics.`, context, insight.MaxKeyEntities, insight.MaxTopics)
}

func comparePrompt(file1, context1, file2, context2 string) string {
	return fmt.Sprintf(`Compare the following two documents.

Document 1 (%s):
%s

Document 2 (%s):
%s

Reply with a single JSON object and nothing else, using exactly these keys:
"similarities": a list of points the documents share,
"differences": a list of key differences,
"conclusion": a brief remark on how the documents relate.`, file1, context1, file2, context2)
}

func joinTexts(texts []string, sep string) string {
	return strings.Join(texts, sep)
}
