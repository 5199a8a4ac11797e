// Package evaluation holds the question/answer test items and their scores.
package evaluation

// Score bounds for the LLM-as-judge scale. Zero means the score could not be parsed.
const (
	MinScore = 1
	MaxScore = 5
)

// QAItem is a synthesized question with its reference answer.
type QAItem struct {
	Question    string `json:"question"`
	TrueAnswer  string `json:"true_answer"`
	SourceChunk string `json:"source_chunk"`
	SourceFile  string `json:"source_file"`
}

// Complete reports whether both question and answer were extracted.
func (q QAItem) Complete() bool {
	return q.Question != "" && q.TrueAnswer != ""
}

// ScoredResult is the judge's verdict on one generated answer.
type ScoredResult struct {
	Question        string   `json:"question"`
	TrueAnswer      string   `json:"true_answer"`
	GeneratedAnswer string   `json:"generated_answer"`
	Score           int      `json:"score"`
	Feedback        string   `json:"feedback"`
	RelevantChunks  []string `json:"relevant_chunks"`
}

// Scored reports whether the judge's score parsed into the valid range.
func (r ScoredResult) Scored() bool {
	return r.Score >= MinScore && r.Score <= MaxScore
}

// Report summarizes a batch evaluation run.
type Report struct {
	Results      []ScoredResult
	Failures     []Failure
	AverageScore float64 // over scored results only
	ScoredCount  int
}

// Failure records an item that could not be evaluated.
type Failure struct {
	Index    int
	Question string
	Err      error
}

// Average computes the mean score over results whose score parsed. Zero when none did.
func Average(results []ScoredResult) (avg float64, n int) {
	var sum int
	for _, r := range results {
		if r.Scored() {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}
