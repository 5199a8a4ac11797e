package domain

import "context"

// Completer is the chat completion contract: one prompt in, one text out.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (Completion, error)
}

// Completion is a model response with the provider that produced it.
type Completion struct {
	Text             string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}
