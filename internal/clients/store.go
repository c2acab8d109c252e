package clients

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no client matches the given key or id.
	ErrNotFound = errors.New("client not found")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the persistence contract for client records. Implementations
// must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, client *Client) error
	FindByAPIKey(ctx context.Context, apiKey string) (*Client, error)
	FindByID(ctx context.Context, id string) (*Client, error)
}
