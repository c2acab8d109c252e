package clients

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It backs unit tests and
// single-node development setups; production deployments use GormStore.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Client
	byKey   map[string]string
	byEmail map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Client),
		byKey:   make(map[string]string),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, client *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[client.Email]; exists {
		return ErrDuplicateEmail
	}

	copied := *client
	s.byID[client.ID] = &copied
	s.byKey[client.APIKey] = client.ID
	s.byEmail[client.Email] = client.ID
	return nil
}

func (s *MemoryStore) FindByAPIKey(_ context.Context, apiKey string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[apiKey]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *client
	return &copied, nil
}

// Update replaces a stored record in place. Used by tests to flip
// status flags after registration.
func (s *MemoryStore) Update(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *client
	s.byID[client.ID] = &copied
}
