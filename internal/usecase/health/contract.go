package health

import "context"

// Pinger checks a store's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// Check is one named component check.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// PingCheck wraps a Pinger as a Check.
func PingCheck(name string, p Pinger) Check {
	return Check{Name: name, Run: p.Ping}
}

// EmbeddingCheck wraps an EmbeddingChecker as a Check.
func EmbeddingCheck(e EmbeddingChecker) Check {
	return Check{Name: "embedding", Run: e.HealthCheck}
}
