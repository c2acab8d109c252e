// Package rate implements the admission-control core: identifier
// resolution, per-identifier limit configuration, and the fixed-window
// counting engine that decides whether a request is admitted.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on the first hit in
// a window. The TTL is set exactly once per window and never refreshed
// by later increments. Key namespaces:
//   - rate:   — per-identifier request counters
//   - config: — per-identifier limit overrides
//
// The gap between the creating INCR and the EXPIRE that follows is a
// known, accepted race: a crash in between leaves a counter with no
// expiry. It is documented here rather than closed because closing it
// would change observable behavior under process-crash scenarios.
//
// # What this package must NOT do
//
//   - Authenticate callers (that is internal/auth).
//   - Enforce write authorization (the HTTP layer owns owner-or-admin).
//   - Apply the fail-open policy; it reports ErrStoreUnavailable and
//     the boundary decides what to do with it.
package rate
