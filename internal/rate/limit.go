package rate

import (
	"context"
	"time"
)

// Limit is an effective quota: at most Requests admissions per Window.
// Limit and window are always read and written together; there are no
// partial overrides.
type Limit struct {
	Requests int
	Window   time.Duration
}

func (l Limit) valid() bool {
	return l.Requests > 0 && l.Window > 0
}

// CounterStore is the contract the admission engine requires from the
// shared counter backend. Incr must be atomic across concurrent
// callers and across process instances; it is the engine's only
// synchronization point.
type CounterStore interface {
	// Incr atomically increments the counter and returns the new value,
	// creating the counter at 1 if absent.
	Incr(ctx context.Context, identifier string) (int64, error)
	// Expire sets the counter's time-to-live. Called once, when Incr
	// returned 1.
	Expire(ctx context.Context, identifier string, ttl time.Duration) error
	// TTL reports the remaining time until the counter expires, or 0
	// when it has no expiry.
	TTL(ctx context.Context, identifier string) (time.Duration, error)
}

// LimitStore persists per-identifier limit overrides in a namespace
// separate from the counters.
type LimitStore interface {
	// Get returns the override for the exact identifier, reporting
	// false when none was written.
	Get(ctx context.Context, identifier string) (Limit, bool, error)
	// Set writes the override, replacing any prior value.
	Set(ctx context.Context, identifier string, limit Limit) error
}
