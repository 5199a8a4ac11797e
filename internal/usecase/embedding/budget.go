package embedding

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/domain"
)

// BudgetAction defines behavior when the daily token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but lets the request through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the request with domain.ErrEmbeddingQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// CounterStore persists daily counters. Implemented by repository/budget.
type CounterStore interface {
	Add(ctx context.Context, key string, tokens int64) (int64, error)
	Current(ctx context.Context, key string) (int64, error)
}

// DailyBudget tracks embedding tokens spent per UTC day.
// Check is answered from memory; Record writes through to the store when one is attached.
type DailyBudget struct {
	mu        sync.Mutex
	used      int64
	limit     int64
	day       string
	action    BudgetAction
	keyPrefix string
	store     CounterStore
	now       func() time.Time
	logger    *zap.Logger
}

// NewDailyBudget creates a budget; limit 0 means unlimited.
func NewDailyBudget(limit int64, action BudgetAction, keyPrefix string, logger *zap.Logger) *DailyBudget {
	b := &DailyBudget{
		limit:     limit,
		action:    action,
		keyPrefix: keyPrefix,
		now:       time.Now,
		logger:    logger,
	}
	b.day = b.today()
	return b
}

// WithStore attaches persistence and loads today's counter.
func (b *DailyBudget) WithStore(ctx context.Context, s CounterStore) *DailyBudget {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = s
	used, err := s.Current(ctx, b.key(b.day))
	if err != nil {
		b.logger.Warn("Failed to load embedding budget", zap.Error(err))
		return b
	}
	b.used = used
	b.logger.Info("Embedding budget loaded", zap.Int64("used_today", used), zap.Int64("daily_limit", b.limit))
	return b
}

func (b *DailyBudget) today() string {
	return b.now().UTC().Format("2006-01-02")
}

func (b *DailyBudget) key(day string) string {
	return b.keyPrefix + "budget:embedding:" + day
}

// rollover resets the counter on a new UTC day. Caller holds mu.
func (b *DailyBudget) rollover() {
	if d := b.today(); d != b.day {
		b.day = d
		b.used = 0
	}
}

// Check reports whether a new request may proceed.
func (b *DailyBudget) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()

	if b.limit == 0 || b.used < b.limit {
		return nil
	}
	if b.action == BudgetActionReject {
		return domain.ErrEmbeddingQuotaExceeded
	}
	b.logger.Warn("Embedding token budget exceeded",
		zap.Int64("used_today", b.used),
		zap.Int64("daily_limit", b.limit),
	)
	return nil
}

// Record adds consumed tokens. Store failures are logged, never returned.
func (b *DailyBudget) Record(ctx context.Context, tokens int64) {
	b.mu.Lock()
	b.rollover()
	b.used += tokens
	store, key := b.store, b.key(b.day)
	b.mu.Unlock()

	if store == nil || tokens == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if _, err := store.Add(ctx, key, tokens); err != nil {
		b.logger.Warn("Failed to persist embedding budget", zap.String("key", key), zap.Error(err))
	}
}

// Remaining returns tokens left today, or -1 when unlimited.
func (b *DailyBudget) Remaining() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()

	if b.limit == 0 {
		return -1
	}
	return max(b.limit-b.used, 0)
}
