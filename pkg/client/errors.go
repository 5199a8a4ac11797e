package client

import "fmt"

// APIError is a non-2xx response, or a 200 response whose body is {"error": ...}.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docinsight: %d: %s", e.StatusCode, e.Message)
}
