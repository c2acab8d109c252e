// Package secret hashes and verifies client API keys using bcrypt.
//
// Verification always goes through bcrypt's own comparison; raw hash
// strings are never compared directly.
package secret

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a fixed cost factor chosen at startup.
type Hasher struct {
	cost int
}

// NewHasher validates the cost factor and returns a ready Hasher.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash returns the bcrypt hash of the given API key.
func (h *Hasher) Hash(key string) (string, error) {
	if key == "" {
		return "", errors.New("key must not be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(key), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether key matches the stored bcrypt hash. A mismatch
// returns (false, nil); a malformed hash returns an error.
func (h *Hasher) Verify(key, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
