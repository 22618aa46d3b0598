package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tiendify/tiendify/internal/model"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestPing(t *testing.T) {
	s := testStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if s.Driver() != DriverSQLite {
		t.Errorf("Driver = %q, want %q", s.Driver(), DriverSQLite)
	}
}

func TestSettings(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSetting(missing) err = %v, want ErrNotFound", err)
	}

	if err := s.SetSetting(ctx, "instance_id", "abc"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	got, err := s.GetSetting(ctx, "instance_id")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "abc" {
		t.Errorf("value = %q, want %q", got, "abc")
	}

	// Upsert overwrites.
	if err := s.SetSetting(ctx, "instance_id", "def"); err != nil {
		t.Fatalf("SetSetting (overwrite): %v", err)
	}
	got, err = s.GetSetting(ctx, "instance_id")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "def" {
		t.Errorf("value = %q, want %q", got, "def")
	}
}

func seedSecretKey(t *testing.T, s *Store, name string, createdAt time.Time) *model.SecretKey {
	t.Helper()
	key := &model.SecretKey{
		ID:         uuid.NewString(),
		Name:       name,
		Scopes:     model.DefaultSecretKeyScopes,
		SecretHash: "$2a$04$fakehashfakehashfakehashfakehashfakehashfakehashfake",
		Prefix:     "abc...xyz",
		Enabled:    true,
	}
	if err := s.CreateSecretKey(context.Background(), key); err != nil {
		t.Fatalf("create secret key %q: %v", name, err)
	}
	if !createdAt.IsZero() {
		_, err := s.db.Exec(s.db.Rebind("UPDATE secret_keys SET created_at = ? WHERE id = ?"), createdAt, key.ID)
		if err != nil {
			t.Fatalf("backdate key: %v", err)
		}
	}
	return key
}

func TestSecretKeyStore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := seedSecretKey(t, s, "old", time.Now().UTC().Add(-time.Hour))
	fresh := seedSecretKey(t, s, "fresh", time.Time{})

	n, err := s.CountSecretKeys(ctx)
	if err != nil {
		t.Fatalf("CountSecretKeys: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	keys, err := s.ListSecretKeys(ctx)
	if err != nil {
		t.Fatalf("ListSecretKeys: %v", err)
	}
	if len(keys) != 2 || keys[0].Name != "fresh" || keys[1].Name != "old" {
		t.Errorf("keys = %+v, want newest first", keys)
	}

	got, err := s.GetSecretKey(ctx, old.ID)
	if err != nil {
		t.Fatalf("GetSecretKey: %v", err)
	}
	if got.Name != "old" {
		t.Errorf("name = %q, want old", got.Name)
	}

	hashes, err := s.ListSecretKeyHashes(ctx)
	if err != nil {
		t.Fatalf("ListSecretKeyHashes: %v", err)
	}
	if len(hashes) != 2 {
		t.Errorf("len(hashes) = %d, want 2", len(hashes))
	}

	deleted, err := s.DeleteSecretKey(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("DeleteSecretKey: %v", err)
	}
	if deleted.ID != fresh.ID {
		t.Errorf("deleted id = %q, want %q", deleted.ID, fresh.ID)
	}
	if _, err := s.GetSecretKey(ctx, fresh.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSecretKey after delete err = %v, want ErrNotFound", err)
	}
	if _, err := s.DeleteSecretKey(ctx, fresh.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestListSecretKeyHashesIncludesDisabled(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	key := seedSecretKey(t, s, "disabled", time.Time{})
	if _, err := s.db.Exec(s.db.Rebind("UPDATE secret_keys SET enabled = ? WHERE id = ?"), false, key.ID); err != nil {
		t.Fatalf("disable key: %v", err)
	}

	hashes, err := s.ListSecretKeyHashes(ctx)
	if err != nil {
		t.Fatalf("ListSecretKeyHashes: %v", err)
	}
	if len(hashes) != 1 {
		t.Errorf("len(hashes) = %d, want 1 (disabled keys still verify)", len(hashes))
	}
}
