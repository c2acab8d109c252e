package rate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestEngine(t *testing.T, defaults Limit) (*Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb)

	engine, err := NewEngine(store, store, defaults)
	if err != nil {
		t.Fatalf("new engine failed: %v", err)
	}

	return engine, mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestCheckAllowsUpToLimitThenDenies(t *testing.T) {
	const limit = 5
	window := 60 * time.Second

	engine, _, done := newTestEngine(t, Limit{Requests: limit, Window: window})
	defer done()

	ctx := context.Background()

	for i := 0; i < limit; i++ {
		dec, err := engine.Check(ctx, "client-1")
		if err != nil {
			t.Fatalf("check %d failed: %v", i+1, err)
		}
		if !dec.Allowed {
			t.Fatalf("call %d should be allowed", i+1)
		}
		expected := int64(limit - i - 1)
		if dec.Remaining != expected {
			t.Fatalf("call %d: expected remaining %d, got %d", i+1, expected, dec.Remaining)
		}
	}

	dec, err := engine.Check(ctx, "client-1")
	if err != nil {
		t.Fatalf("denied check failed: %v", err)
	}
	if dec.Allowed {
		t.Fatal("call over the limit should be denied")
	}
	if dec.Remaining != 0 {
		t.Fatalf("denied call should report remaining 0, got %d", dec.Remaining)
	}
	if dec.RetryAfter <= 0 || dec.RetryAfter > window {
		t.Fatalf("retry-after should be in (0, %v], got %v", window, dec.RetryAfter)
	}
	if dec.Limit.Requests != limit {
		t.Fatalf("decision should carry the effective limit, got %d", dec.Limit.Requests)
	}
}

func TestCheckCountsDeniedRequests(t *testing.T) {
	engine, mr, done := newTestEngine(t, Limit{Requests: 1, Window: time.Minute})
	defer done()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := engine.Check(ctx, "client-1"); err != nil {
			t.Fatalf("check failed: %v", err)
		}
	}

	got, err := mr.Get("rate:client-1")
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if got != "3" {
		t.Fatalf("denied requests must still be counted; counter = %s", got)
	}
}

func TestWindowExpiryResetsCounter(t *testing.T) {
	const limit = 3
	window := 30 * time.Second

	engine, mr, done := newTestEngine(t, Limit{Requests: limit, Window: window})
	defer done()

	ctx := context.Background()
	for i := 0; i < limit+1; i++ {
		if _, err := engine.Check(ctx, "client-1"); err != nil {
			t.Fatalf("check failed: %v", err)
		}
	}

	mr.FastForward(window)

	dec, err := engine.Check(ctx, "client-1")
	if err != nil {
		t.Fatalf("post-expiry check failed: %v", err)
	}
	if !dec.Allowed {
		t.Fatal("counter should reset after the window elapses")
	}
	if dec.Remaining != limit-1 {
		t.Fatalf("expected remaining %d after reset, got %d", limit-1, dec.Remaining)
	}
}

func TestTTLSetOnceNeverRefreshed(t *testing.T) {
	window := 60 * time.Second

	engine, mr, done := newTestEngine(t, Limit{Requests: 10, Window: window})
	defer done()

	ctx := context.Background()
	if _, err := engine.Check(ctx, "client-1"); err != nil {
		t.Fatalf("first check failed: %v", err)
	}

	mr.FastForward(20 * time.Second)

	if _, err := engine.Check(ctx, "client-1"); err != nil {
		t.Fatalf("second check failed: %v", err)
	}

	// A refreshed TTL would read 60s again; fixed-window must keep
	// counting down from the first hit.
	if got := mr.TTL("rate:client-1"); got != 40*time.Second {
		t.Fatalf("expected ttl 40s, got %v", got)
	}
}

func TestConcurrentChecksAdmitExactlyLimit(t *testing.T) {
	const (
		limit = 10
		calls = 40
	)

	engine, _, done := newTestEngine(t, Limit{Requests: limit, Window: time.Minute})
	defer done()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
		denied  int
	)

	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, err := engine.Check(context.Background(), "client-1")
			if err != nil {
				t.Errorf("check failed: %v", err)
				return
			}
			mu.Lock()
			if dec.Allowed {
				allowed++
			} else {
				denied++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Fatalf("expected exactly %d allowed, got %d", limit, allowed)
	}
	if denied != calls-limit {
		t.Fatalf("expected %d denied, got %d", calls-limit, denied)
	}
}

func TestOverrideAppliesToExactIdentifierOnly(t *testing.T) {
	engine, _, done := newTestEngine(t, Limit{Requests: 10, Window: time.Minute})
	defer done()

	ctx := context.Background()
	override := Limit{Requests: 20, Window: 120 * time.Second}
	if err := engine.SetLimit(ctx, "client-1:/orders", override); err != nil {
		t.Fatalf("set limit failed: %v", err)
	}

	dec, err := engine.Check(ctx, "client-1:/orders")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if dec.Limit != override {
		t.Fatalf("expected override %+v, got %+v", override, dec.Limit)
	}
	if dec.Remaining != 19 {
		t.Fatalf("expected remaining 19 under override, got %d", dec.Remaining)
	}

	// Same principal without the route suffix stays on defaults.
	dec, err = engine.Check(ctx, "client-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if dec.Limit.Requests != 10 {
		t.Fatalf("expected defaults without route suffix, got %+v", dec.Limit)
	}

	// A different client stays on defaults too.
	dec, err = engine.Check(ctx, "client-2:/orders")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if dec.Limit.Requests != 10 {
		t.Fatalf("expected defaults for other client, got %+v", dec.Limit)
	}
}

func TestOverrideReplacesPriorValue(t *testing.T) {
	engine, _, done := newTestEngine(t, Limit{Requests: 10, Window: time.Minute})
	defer done()

	ctx := context.Background()
	if err := engine.SetLimit(ctx, "client-1", Limit{Requests: 5, Window: 30 * time.Second}); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if err := engine.SetLimit(ctx, "client-1", Limit{Requests: 7, Window: 45 * time.Second}); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	dec, err := engine.Check(ctx, "client-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if dec.Limit.Requests != 7 || dec.Limit.Window != 45*time.Second {
		t.Fatalf("expected latest override, got %+v", dec.Limit)
	}
}

func TestSetLimitValidation(t *testing.T) {
	engine, _, done := newTestEngine(t, Limit{Requests: 10, Window: time.Minute})
	defer done()

	ctx := context.Background()
	cases := []struct {
		identifier string
		limit      Limit
	}{
		{"", Limit{Requests: 5, Window: time.Minute}},
		{"client-1", Limit{Requests: 0, Window: time.Minute}},
		{"client-1", Limit{Requests: -1, Window: time.Minute}},
		{"client-1", Limit{Requests: 5, Window: 0}},
	}

	for _, tc := range cases {
		if err := engine.SetLimit(ctx, tc.identifier, tc.limit); !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("identifier=%q limit=%+v: expected ErrInvalidParams, got %v", tc.identifier, tc.limit, err)
		}
	}
}

func TestConfigAndCounterNamespacesDisjoint(t *testing.T) {
	engine, mr, done := newTestEngine(t, Limit{Requests: 10, Window: time.Minute})
	defer done()

	ctx := context.Background()
	if err := engine.SetLimit(ctx, "client-1", Limit{Requests: 3, Window: time.Minute}); err != nil {
		t.Fatalf("set limit failed: %v", err)
	}
	if _, err := engine.Check(ctx, "client-1"); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	if !mr.Exists("config:client-1") {
		t.Fatal("expected config key in its own namespace")
	}
	if !mr.Exists("rate:client-1") {
		t.Fatal("expected counter key in its own namespace")
	}
}

func TestCheckStoreFailure(t *testing.T) {
	engine, mr, done := newTestEngine(t, Limit{Requests: 10, Window: time.Minute})
	defer done()

	mr.Close()

	_, err := engine.Check(context.Background(), "client-1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	dec := engine.FailOpen()
	if !dec.Allowed {
		t.Fatal("fail-open decision must allow the request")
	}
}
