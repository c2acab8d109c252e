package rate

import "errors"

var (
	// ErrNoIdentifier indicates no identity, client reference, or
	// address was available to key the quota on.
	ErrNoIdentifier = errors.New("no identifier available")
	// ErrInvalidParams indicates a limit override with a missing
	// identifier or a non-positive limit or window.
	ErrInvalidParams = errors.New("invalid limit parameters")
	// ErrStoreUnavailable indicates a counter or config store call
	// failed. The HTTP boundary treats it as allow-by-policy.
	ErrStoreUnavailable = errors.New("limit store unavailable")
)
