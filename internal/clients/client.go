// Package clients owns the client registration records: the persistent
// model, the store contracts, and the registration flow that issues API
// keys. The admission core only ever reads these records through the
// auth verifier.
package clients

import "time"

// Client is a registered API consumer. APIKey is the plaintext lookup
// column; APIKeyHash is the bcrypt hash the verifier compares against.
// The plaintext key is returned to the caller exactly once, at
// registration.
type Client struct {
	ID         string `gorm:"primaryKey"`
	ClientName string `gorm:"not null"`
	Email      string `gorm:"uniqueIndex;not null"`
	APIKey     string `gorm:"uniqueIndex;not null"`
	APIKeyHash string `gorm:"not null"`
	IsAdmin    bool
	IsActive   bool `gorm:"default:true"`
	RevokedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Revoked reports whether the client may no longer authenticate.
func (c *Client) Revoked() bool {
	return !c.IsActive || c.RevokedAt != nil
}
