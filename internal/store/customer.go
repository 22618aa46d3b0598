package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tiendify/tiendify/internal/model"
)

// ListCustomers returns a page of customers, newest first.
func (s *Store) ListCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	var customers []model.Customer
	err := s.db.SelectContext(ctx, &customers, s.db.Rebind(
		"SELECT * FROM customers ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// GetCustomerByEmail looks up the shop profile behind a session identity.
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var c model.Customer
	err := s.db.GetContext(ctx, &c, s.db.Rebind("SELECT * FROM customers WHERE email = ?"), email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return &c, nil
}

// CreateCustomer inserts a customer profile.
func (s *Store) CreateCustomer(ctx context.Context, c *model.Customer) error {
	c.CreatedAt = time.Now().UTC()
	id, err := s.execInsert(ctx,
		`INSERT INTO customers (email, first_name, last_name, phone, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.Email, c.FirstName, c.LastName, c.Phone, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID = id
	return nil
}
