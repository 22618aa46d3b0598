// Package store persists the shop's state in a relational database through
// sqlx. SQLite (in-process, via modernc) backs development and tests;
// PostgreSQL (via the pgx stdlib driver) backs production.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store wraps the shop database. All methods are safe for concurrent use; the
// database serializes conflicting writes itself.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the shop database and applies migrations. An empty driver
// selects in-memory SQLite, which is what the tests use. For SQLite a
// non-empty dsn is treated as a data directory.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "", DriverSQLite:
		return openSQLite(dsn)
	case DriverPostgres:
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func openSQLite(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "tiendify.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open shop database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, driver: DriverSQLite}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate shop database: %w", err)
	}
	return s, nil
}

func openPostgres(dsn string) (*Store, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open shop database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, driver: DriverPostgres}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate shop database: %w", err)
	}
	return s, nil
}

// Driver reports which database driver backs the store.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// execInsert runs an INSERT written with ? placeholders and returns the
// generated id, papering over the LastInsertId vs RETURNING split between
// SQLite and Postgres.
func (s *Store) execInsert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetSetting returns the value for a settings key, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind("SELECT value FROM settings WHERE key = ?"), key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a settings key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	q := `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), key, value); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
