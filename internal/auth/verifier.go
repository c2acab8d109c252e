// Package auth implements the identity verifier that gates the
// admission engine. A presented API key is located by its plaintext
// lookup column, confirmed against the stored bcrypt hash, and only
// then checked for revocation.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/AhmedSaid25/GateKeeper/internal/clients"
	"github.com/AhmedSaid25/GateKeeper/internal/secret"
)

var (
	// ErrUnauthenticated indicates no API key was supplied.
	ErrUnauthenticated = errors.New("api key required")
	// ErrInvalidCredential indicates the key matches no client or
	// fails hash verification.
	ErrInvalidCredential = errors.New("invalid api key")
	// ErrRevoked indicates the key verified but the client is
	// deactivated or carries a revocation timestamp.
	ErrRevoked = errors.New("client revoked")
	// ErrStoreUnavailable indicates the client store could not be
	// reached.
	ErrStoreUnavailable = errors.New("client store unavailable")
)

// Verifier validates presented secrets against stored client records.
// It is read-only and never logs the secret.
type Verifier struct {
	store  clients.Store
	hasher *secret.Hasher
}

func NewVerifier(store clients.Store, hasher *secret.Hasher) *Verifier {
	return &Verifier{store: store, hasher: hasher}
}

// Verify returns the client identified by the presented API key.
// Status is checked strictly after hash confirmation so that a revoked
// key is distinguishable from an unknown one.
func (v *Verifier) Verify(ctx context.Context, presented string) (*clients.Client, error) {
	if presented == "" {
		return nil, ErrUnauthenticated
	}

	client, err := v.store.FindByAPIKey(ctx, presented)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := v.hasher.Verify(presented, client.APIKeyHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredential
	}

	if client.Revoked() {
		return nil, ErrRevoked
	}

	return client, nil
}
