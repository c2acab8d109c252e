package rate

import (
	"context"
	"fmt"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
	Limit      Limit
}

// Engine orchestrates the limit lookup and the counter store to decide
// whether a request is admitted. It holds no locks across store calls;
// correctness rests entirely on the counter store's atomic increment,
// so any number of process instances may share the same store.
type Engine struct {
	counters CounterStore
	limits   LimitStore
	defaults Limit
}

// NewEngine builds an admission engine with the given stores and the
// system-default limit applied when no override exists.
func NewEngine(counters CounterStore, limits LimitStore, defaults Limit) (*Engine, error) {
	if counters == nil || limits == nil {
		return nil, fmt.Errorf("counter and limit stores are required")
	}
	if !defaults.valid() {
		return nil, fmt.Errorf("default limit must have positive requests and window")
	}
	return &Engine{counters: counters, limits: limits, defaults: defaults}, nil
}

// Check performs one admission decision for the identifier. Both
// admitted and denied requests consume a counter slot: the increment
// happens before the limit comparison, so denial never exempts a
// request from being counted.
//
// Store failures are reported wrapped in ErrStoreUnavailable; the
// caller decides whether to fail open.
func (e *Engine) Check(ctx context.Context, identifier string) (Decision, error) {
	limit, err := e.effectiveLimit(ctx, identifier)
	if err != nil {
		return Decision{}, err
	}

	count, err := e.counters.Incr(ctx, identifier)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// First hit in a window: the counter was just created, so give it
	// its one and only TTL. Later increments must never touch the TTL
	// or the window would slide.
	if count == 1 {
		if err := e.counters.Expire(ctx, identifier, limit.Window); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if count > int64(limit.Requests) {
		ttl, err := e.counters.TTL(ctx, identifier)
		if err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: ttl,
			Limit:      limit,
		}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: int64(limit.Requests) - count,
		Limit:     limit,
	}, nil
}

// SetLimit persists an override for the identifier, replacing any
// prior value. Authorization is the caller's concern; the writer is
// not identity-aware.
func (e *Engine) SetLimit(ctx context.Context, identifier string, limit Limit) error {
	if identifier == "" || !limit.valid() {
		return ErrInvalidParams
	}
	if err := e.limits.Set(ctx, identifier, limit); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// FailOpen is the decision the boundary substitutes when the store is
// unreachable: the request passes and no quota is recorded.
func (e *Engine) FailOpen() Decision {
	return Decision{
		Allowed:   true,
		Remaining: int64(e.defaults.Requests),
		Limit:     e.defaults,
	}
}

func (e *Engine) effectiveLimit(ctx context.Context, identifier string) (Limit, error) {
	limit, found, err := e.limits.Get(ctx, identifier)
	if err != nil {
		return Limit{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return e.defaults, nil
	}
	return limit, nil
}
