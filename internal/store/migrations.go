package store

import (
	"fmt"
	"strings"
)

// migrate applies the schema. Statements are idempotent; the two dialects
// differ only in auto-increment and boolean column syntax, handled by the
// token substitution below.
func (s *Store) migrate() error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	boolT := "INTEGER"
	if s.driver == DriverPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
		boolT = "BOOLEAN"
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id {{PK}},
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0,
			hidden {{BOOL}} NOT NULL DEFAULT {{FALSE}},
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id {{PK}},
			slug TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS product_categories (
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			PRIMARY KEY (product_id, category_id)
		)`,

		`CREATE TABLE IF NOT EXISTS mediafiles (
			id {{PK}},
			url TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS products_mediafiles (
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			mediafile_id INTEGER NOT NULL REFERENCES mediafiles(id) ON DELETE CASCADE,
			PRIMARY KEY (product_id, mediafile_id)
		)`,

		`CREATE TABLE IF NOT EXISTS customers (
			id {{PK}},
			email TEXT UNIQUE NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS addresses (
			id {{PK}},
			line1 TEXT NOT NULL DEFAULT '',
			line2 TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id {{PK}},
			status TEXT NOT NULL DEFAULT 'PENDING',
			method TEXT NOT NULL DEFAULT '',
			amount INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS shipping (
			id {{PK}},
			status TEXT NOT NULL DEFAULT 'PENDING',
			carrier TEXT NOT NULL DEFAULT '',
			tracking TEXT NOT NULL DEFAULT '',
			address_id INTEGER NOT NULL REFERENCES addresses(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id {{PK}},
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			payment_id INTEGER NOT NULL REFERENCES payments(id),
			shipping_id INTEGER NOT NULL REFERENCES shipping(id),
			total INTEGER NOT NULL DEFAULT 0,
			ordered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS secret_keys (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			scopes TEXT NOT NULL DEFAULT '[admin.all]',
			secret_hash TEXT NOT NULL,
			prefix TEXT NOT NULL,
			enabled {{BOOL}} NOT NULL DEFAULT {{TRUE}},
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_products_name ON products(name)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_ordered_at ON orders(ordered_at)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_created_at ON customers(created_at)`,
	}

	replacer := strings.NewReplacer(
		"{{PK}}", pk,
		"{{BOOL}}", boolT,
		"{{TRUE}}", s.boolLit(true),
		"{{FALSE}}", s.boolLit(false),
	)

	for i, m := range migrations {
		if _, err := s.db.Exec(replacer.Replace(m)); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) boolLit(v bool) string {
	if s.driver == DriverPostgres {
		if v {
			return "TRUE"
		}
		return "FALSE"
	}
	if v {
		return "1"
	}
	return "0"
}
