package model

import "time"

// DefaultSecretKeyScopes is the scope descriptor attached to every issued
// key. It is stored as an opaque string and never parsed by the auth core.
const DefaultSecretKeyScopes = "[admin.all]"

// MaxSecretKeys caps how many service credentials may exist at once. The cap
// is enforced at creation time, not by the schema.
const MaxSecretKeys = 10

// SecretKey represents a long-lived service credential issued to automated
// clients. The raw secret is never stored; only a bcrypt hash and a short
// display prefix are persisted.
type SecretKey struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Scopes     string    `json:"scopes" db:"scopes"`
	SecretHash string    `json:"-" db:"secret_hash"` // bcrypt hash, never expose
	Prefix     string    `json:"prefix" db:"prefix"` // "abc...xyz", safe to display
	Enabled    bool      `json:"enabled" db:"enabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
