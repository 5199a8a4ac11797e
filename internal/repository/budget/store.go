// Package budget persists daily token counters in Valkey.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/docinsight/internal/db"
)

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	ExpireNX(ctx context.Context, key string, ttl time.Duration) error
}

// Store keeps one INCRBY counter per day key. Keys outlive their day by ttl.
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a budget store. ttl applies once per key (recommended: 48h).
func New(s store, ttl time.Duration) *Store {
	return &Store{store: s, ttl: ttl}
}

// Add increments the counter and returns its new value.
func (s *Store) Add(ctx context.Context, key string, tokens int64) (int64, error) {
	n, err := s.store.IncrBy(ctx, key, tokens)
	if err != nil {
		return 0, fmt.Errorf("budget INCRBY %s: %w", key, err)
	}
	if err := s.store.ExpireNX(ctx, key, s.ttl); err != nil {
		return 0, fmt.Errorf("budget EXPIRE %s: %w", key, err)
	}
	return n, nil
}

// Current returns the counter value; a missing key reads as zero.
func (s *Store) Current(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("budget GET %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget GET %s parse: %w", key, err)
	}
	return n, nil
}
