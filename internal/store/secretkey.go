package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tiendify/tiendify/internal/model"
)

// CountSecretKeys returns how many secret keys currently exist.
func (s *Store) CountSecretKeys(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM secret_keys"); err != nil {
		return 0, fmt.Errorf("count secret keys: %w", err)
	}
	return n, nil
}

// CreateSecretKey inserts a new secret key row. The id and secret_hash must
// already be set; CreatedAt and UpdatedAt are populated here.
func (s *Store) CreateSecretKey(ctx context.Context, key *model.SecretKey) error {
	now := time.Now().UTC()
	key.CreatedAt = now
	key.UpdatedAt = now

	const q = `INSERT INTO secret_keys
		(id, name, scopes, secret_hash, prefix, enabled, created_at, updated_at)
		VALUES
		(:id, :name, :scopes, :secret_hash, :prefix, :enabled, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("insert secret key: %w", err)
	}
	return nil
}

// ListSecretKeys returns all secret keys, newest first. Hashes are carried on
// the rows but never serialized (the model hides them from JSON).
func (s *Store) ListSecretKeys(ctx context.Context) ([]model.SecretKey, error) {
	var keys []model.SecretKey
	err := s.db.SelectContext(ctx, &keys,
		"SELECT * FROM secret_keys ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list secret keys: %w", err)
	}
	return keys, nil
}

// GetSecretKey looks up a secret key by id.
func (s *Store) GetSecretKey(ctx context.Context, id string) (*model.SecretKey, error) {
	var key model.SecretKey
	err := s.db.GetContext(ctx, &key, s.db.Rebind("SELECT * FROM secret_keys WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get secret key: %w", err)
	}
	return &key, nil
}

// DeleteSecretKey removes a secret key by id and returns the row that
// existed, or ErrNotFound.
func (s *Store) DeleteSecretKey(ctx context.Context, id string) (*model.SecretKey, error) {
	key, err := s.GetSecretKey(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM secret_keys WHERE id = ?"), id); err != nil {
		return nil, fmt.Errorf("delete secret key: %w", err)
	}
	return key, nil
}

// ListSecretKeyHashes returns the stored hashes the gate verifies service
// credentials against. The enabled flag is deliberately not filtered on;
// disabling a key is a display-level state pending a product decision.
func (s *Store) ListSecretKeyHashes(ctx context.Context) ([]string, error) {
	var hashes []string
	if err := s.db.SelectContext(ctx, &hashes, "SELECT secret_hash FROM secret_keys"); err != nil {
		return nil, fmt.Errorf("list secret key hashes: %w", err)
	}
	return hashes, nil
}
