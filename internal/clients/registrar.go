package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"

	"github.com/AhmedSaid25/GateKeeper/internal/secret"
)

// ErrInvalidRegistration indicates missing clientName or email.
var ErrInvalidRegistration = errors.New("clientName and email required")

const apiKeyBytes = 16

// Registrar creates client records and issues their API keys.
type Registrar struct {
	store  Store
	hasher *secret.Hasher
}

func NewRegistrar(store Store, hasher *secret.Hasher) *Registrar {
	return &Registrar{store: store, hasher: hasher}
}

// Register creates a new client and returns the record together with
// the plaintext API key. The plaintext is never persisted as the
// canonical credential and never returned again.
func (r *Registrar) Register(ctx context.Context, clientName, email string) (*Client, string, error) {
	if clientName == "" || email == "" {
		return nil, "", ErrInvalidRegistration
	}

	raw := make([]byte, apiKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", err
	}
	apiKey := hex.EncodeToString(raw)

	hash, err := r.hasher.Hash(apiKey)
	if err != nil {
		return nil, "", err
	}

	client := &Client{
		ID:         uuid.NewString(),
		ClientName: clientName,
		Email:      email,
		APIKey:     apiKey,
		APIKeyHash: hash,
		IsActive:   true,
	}

	if err := r.store.Create(ctx, client); err != nil {
		return nil, "", err
	}

	return client, apiKey, nil
}
