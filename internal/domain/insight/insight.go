// Package insight holds structured summaries and comparisons produced by the LLM.
package insight

import (
	"fmt"
	"strings"
)

// Limits on list sizes requested from the model.
const (
	MaxKeyEntities = 5
	MaxTopics      = 3
)

// Insight is a structured summary of one document.
type Insight struct {
	Summary     string   `json:"summary"`
	KeyEntities []string `json:"key_entities"`
	Topics      []string `json:"topics"`
}

// Normalize trims whitespace, drops empty items and caps list lengths.
func (i Insight) Normalize() Insight {
	return Insight{
		Summary:     strings.TrimSpace(i.Summary),
		KeyEntities: capList(i.KeyEntities, MaxKeyEntities),
		Topics:      capList(i.Topics, MaxTopics),
	}
}

// Validate rejects an insight without a summary.
func (i Insight) Validate() error {
	if i.Summary == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

// Comparison contrasts two documents.
type Comparison struct {
	Similarities []string `json:"similarities"`
	Differences  []string `json:"differences"`
	Conclusion   string   `json:"conclusion"`
}

// Normalize trims whitespace and drops empty items.
func (c Comparison) Normalize() Comparison {
	return Comparison{
		Similarities: capList(c.Similarities, 0),
		Differences:  capList(c.Differences, 0),
		Conclusion:   strings.TrimSpace(c.Conclusion),
	}
}

// Validate rejects a comparison without a conclusion.
func (c Comparison) Validate() error {
	if c.Conclusion == "" {
		return fmt.Errorf("conclusion is empty")
	}
	return nil
}

// capList returns trimmed non-empty items, at most limit of them (0 = unlimited).
func capList(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
