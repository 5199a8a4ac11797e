package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/docinsight/internal/domain"
)

// parseAPIError extracts a human-readable error from the API response and wraps
// it with the given domain sentinel. 429 responses additionally wrap domain.ErrRateLimited.
func parseAPIError(kind string, err error, sentinel error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return wrapStatus(fmt.Sprintf("%s API error %d: %s", kind, reqErr.HTTPStatusCode, detail),
			reqErr.HTTPStatusCode, sentinel)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapStatus(fmt.Sprintf("%s API error %d: %s", kind, apiErr.HTTPStatusCode, apiErr.Message),
			apiErr.HTTPStatusCode, sentinel)
	}

	return fmt.Errorf("%s request failed: %v: %w", kind, err, sentinel)
}

func wrapStatus(msg string, status int, sentinel error) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %w", msg, sentinel, domain.ErrRateLimited)
	}
	return fmt.Errorf("%s: %w", msg, sentinel)
}

// extractDetail pulls a "detail" or "error.message" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}
