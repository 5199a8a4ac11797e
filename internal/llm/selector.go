package llm

import (
	"math/rand/v2"
	"sync/atomic"
)

// Selector picks one of n balanced providers for the next request.
type Selector interface {
	Pick(n int) int
}

// RoundRobin cycles through providers in configuration order. Safe for concurrent use.
type RoundRobin struct {
	next atomic.Uint64
}

// Pick returns the next index modulo n.
func (r *RoundRobin) Pick(n int) int {
	return int((r.next.Add(1) - 1) % uint64(n))
}

// Random picks uniformly.
type Random struct{}

// Pick returns a random index in [0, n).
func (Random) Pick(n int) int {
	return rand.IntN(n)
}

// NewSelector maps a strategy name to a Selector. Unknown names fall back to round-robin.
func NewSelector(strategy string) Selector {
	if strategy == "random" {
		return Random{}
	}
	return &RoundRobin{}
}
