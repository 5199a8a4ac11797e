// Package answer defines the outcome of answer generation as an explicit result type.
package answer

// Fixed user-facing texts.
const (
	NoContextText = "I couldn't find any relevant information in the uploaded documents to answer your question."
	FailedText    = "Sorry, I encountered an error while generating the answer."
)

// Outcome tells how an Answer was produced.
type Outcome string

// Outcome values.
const (
	OutcomeGenerated Outcome = "generated"
	OutcomeNoContext Outcome = "no_context"
	OutcomeFailed    Outcome = "failed"
)

// Answer is always renderable: Text is set for every outcome.
// Err is non-nil only for OutcomeFailed.
type Answer struct {
	Text    string
	Outcome Outcome
	Err     error
}

// Generated wraps model output.
func Generated(text string) Answer {
	return Answer{Text: text, Outcome: OutcomeGenerated}
}

// NoContext is returned when retrieval found nothing.
func NoContext() Answer {
	return Answer{Text: NoContextText, Outcome: OutcomeNoContext}
}

// Failed carries the generation error behind the apology text.
func Failed(err error) Answer {
	return Answer{Text: FailedText, Outcome: OutcomeFailed, Err: err}
}

// OK reports whether the model produced the text.
func (a Answer) OK() bool { return a.Outcome == OutcomeGenerated }
