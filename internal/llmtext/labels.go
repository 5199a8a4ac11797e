// Package llmtext extracts structured values from free-text model responses.
//
// Labeled-line grammar: a line containing LABEL ":" carries the value that
// follows the first occurrence of the label, trimmed, up to the end of the line.
// When a label recurs, the last occurrence wins.
package llmtext

import (
	"strconv"
	"strings"
)

// Labels used in prompts and parsed back out of responses.
const (
	LabelQuestion = "Question:"
	LabelAnswer   = "Answer:"
	LabelScore    = "Score:"
)

// LabeledValue returns the value after label on line, and whether line contains label.
func LabeledValue(line, label string) (string, bool) {
	_, after, found := strings.Cut(line, label)
	if !found {
		return "", false
	}
	return strings.TrimSpace(after), true
}

// ParseQA extracts a question and answer from a response.
// A line carrying the question label is never inspected for the answer label,
// so "Question: ... Answer: ..." on one line yields only a question.
func ParseQA(response string) (question, answer string) {
	for _, line := range lines(response) {
		if v, ok := LabeledValue(line, LabelQuestion); ok {
			question = v
		} else if v, ok := LabeledValue(line, LabelAnswer); ok {
			answer = v
		}
	}
	return question, answer
}

// ParseScore extracts the judge score from a response.
// Accepts "Score: 4" and "Score: 4/5". Lines whose value is not an integer are
// skipped; the last parseable line wins and 0 means no score was found.
func ParseScore(response string) int {
	score := 0
	for _, line := range lines(response) {
		v, ok := LabeledValue(line, LabelScore)
		if !ok {
			continue
		}
		num, _, _ := strings.Cut(v, "/")
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil {
			continue
		}
		score = n
	}
	return score
}

func lines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
