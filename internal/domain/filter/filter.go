// Package filter describes metadata pre-filters applied to vector searches.
package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should boolean semantics:
// every must condition holds, and at least one should condition holds when any are given.
type Expression struct {
	must   []Condition
	should []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0
}

// Matches evaluates the expression against a flat field map.
func (e Expression) Matches(fields map[string]string) bool {
	for _, c := range e.must {
		if fields[c.key] != c.match {
			return false
		}
	}
	if len(e.should) == 0 {
		return true
	}
	for _, c := range e.should {
		if fields[c.key] == c.match {
			return true
		}
	}
	return false
}

// Condition is an exact tag match on a single field.
type Condition struct {
	key   string
	match string
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// SourceField is the chunk attribute holding the upload filename.
const SourceField = "source"

// BySources restricts chunks to the given files. One file is an exact match,
// several are OR-ed, none means no restriction. Blanks and duplicates are ignored.
// The file list is not capped by MaxConditionsPerGroup.
func BySources(sources []string) (Expression, error) {
	seen := make(map[string]bool, len(sources))
	conds := make([]Condition, 0, len(sources))
	for _, s := range sources {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		c, err := NewMatch(SourceField, s)
		if err != nil {
			return Expression{}, err
		}
		conds = append(conds, c)
	}

	switch len(conds) {
	case 0:
		return Expression{}, nil
	case 1:
		return Expression{must: conds}, nil
	default:
		return Expression{should: conds}, nil
	}
}
