// Package service holds the business logic above the store: currently the
// secret-key lifecycle (generation, quota, deletion).
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tiendify/tiendify/internal/auth"
	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/store"
)

// ErrQuotaExceeded is returned when a creation would exceed the secret-key
// cap.
var ErrQuotaExceeded = errors.New("secret key quota exceeded")

// SecretKeys manages issued service credentials.
type SecretKeys struct {
	store  *store.Store
	hasher *auth.Hasher
}

// NewSecretKeys creates the secret-key service.
func NewSecretKeys(st *store.Store, hasher *auth.Hasher) *SecretKeys {
	return &SecretKeys{store: st, hasher: hasher}
}

// Create issues a new secret key. The returned plaintext is shown exactly
// once and never recoverable afterwards. The quota check is count-then-create
// and not transactional with the insert: two concurrent creations at the
// boundary can overshoot the cap. The cap is advisory.
func (s *SecretKeys) Create(ctx context.Context, name, scopes string) (*model.SecretKey, string, error) {
	count, err := s.store.CountSecretKeys(ctx)
	if err != nil {
		return nil, "", err
	}
	if count >= model.MaxSecretKeys {
		return nil, "", fmt.Errorf("%w: at most %d keys may exist", ErrQuotaExceeded, model.MaxSecretKeys)
	}

	plaintext, hash, prefix, err := s.hasher.Generate()
	if err != nil {
		return nil, "", err
	}

	if scopes == "" {
		scopes = model.DefaultSecretKeyScopes
	}
	key := &model.SecretKey{
		ID:         uuid.NewString(),
		Name:       name,
		Scopes:     scopes,
		SecretHash: hash,
		Prefix:     prefix,
		Enabled:    true,
	}
	if err := s.store.CreateSecretKey(ctx, key); err != nil {
		return nil, "", err
	}
	return key, plaintext, nil
}

// List returns every issued key, newest first. Hashes stay server-side.
func (s *SecretKeys) List(ctx context.Context) ([]model.SecretKey, error) {
	return s.store.ListSecretKeys(ctx)
}

// Delete removes a key by id and returns the row that existed. Deletion is
// the only way to retire a key; there is no update operation.
func (s *SecretKeys) Delete(ctx context.Context, id string) (*model.SecretKey, error) {
	return s.store.DeleteSecretKey(ctx, id)
}
