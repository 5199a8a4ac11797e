package domain

import "errors"

var (
	// ErrInvalidArgument signals a missing or malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound signals that no indexed content matched.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedFile signals an upload that is not a PDF.
	ErrUnsupportedFile = errors.New("only PDF files are supported")
	// ErrMalformedOutput signals LLM output that could not be parsed.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrLLMProviderError signals a chat completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrNoProvider signals that no chat completion provider has credentials configured.
	ErrNoProvider = errors.New("no llm provider configured")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded signals an exhausted daily embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrAlreadyExists signals a unique key that is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized signals missing, wrong or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable signals that the vector store or catalog could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// OutcomeError is an analysis failure with a message fit to show end users.
// Error returns Msg only; Err stays reachable through errors.Is/As.
type OutcomeError struct {
	Msg string
	Err error
}

// NewOutcomeError wraps err behind a user-facing message.
func NewOutcomeError(msg string, err error) *OutcomeError {
	return &OutcomeError{Msg: msg, Err: err}
}

func (e *OutcomeError) Error() string { return e.Msg }

func (e *OutcomeError) Unwrap() error { return e.Err }
