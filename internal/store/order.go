package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tiendify/tiendify/internal/model"
)

// ListOrders returns a page of orders, newest first, with the payment and
// shipping legs embedded.
func (s *Store) ListOrders(ctx context.Context, limit, offset int) ([]model.OrderSummary, error) {
	var orders []model.Order
	err := s.db.SelectContext(ctx, &orders, s.db.Rebind(
		"SELECT * FROM orders ORDER BY ordered_at DESC, id DESC LIMIT ? OFFSET ?"),
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	summaries := make([]model.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summary := model.OrderSummary{Order: o}
		if summary.Payment, err = s.getPayment(ctx, o.PaymentID); err != nil {
			return nil, err
		}
		if summary.Shipping, err = s.getShipping(ctx, o.ShippingID); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetOrder returns one order with payment, shipping, customer, and the
// shipping address, or ErrNotFound.
func (s *Store) GetOrder(ctx context.Context, id int64) (*model.OrderDetail, error) {
	var o model.Order
	err := s.db.GetContext(ctx, &o, s.db.Rebind("SELECT * FROM orders WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	detail := &model.OrderDetail{OrderSummary: model.OrderSummary{Order: o}}
	if detail.Payment, err = s.getPayment(ctx, o.PaymentID); err != nil {
		return nil, err
	}
	if detail.Shipping, err = s.getShipping(ctx, o.ShippingID); err != nil {
		return nil, err
	}

	var customer model.Customer
	err = s.db.GetContext(ctx, &customer, s.db.Rebind("SELECT * FROM customers WHERE id = ?"), o.CustomerID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get order customer: %w", err)
	}
	if err == nil {
		detail.Customer = &customer
	}

	if detail.Shipping != nil {
		var addr model.Address
		err = s.db.GetContext(ctx, &addr, s.db.Rebind("SELECT * FROM addresses WHERE id = ?"), detail.Shipping.AddressID)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("get shipping address: %w", err)
		}
		if err == nil {
			detail.Address = &addr
		}
	}
	return detail, nil
}

// CancelOrder flips the order's payment and shipping legs to CANCELLED in one
// transaction. Returns ErrNotFound if the order does not exist.
func (s *Store) CancelOrder(ctx context.Context, id int64) error {
	var o model.Order
	err := s.db.GetContext(ctx, &o, s.db.Rebind("SELECT * FROM orders WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		"UPDATE payments SET status = ? WHERE id = ?"),
		model.PaymentCancelled, o.PaymentID); err != nil {
		return fmt.Errorf("cancel payment: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		"UPDATE shipping SET status = ? WHERE id = ?"),
		model.ShippingCancelled, o.ShippingID); err != nil {
		return fmt.Errorf("cancel shipping: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountOrders returns the total number of orders.
func (s *Store) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM orders"); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// CreateOrder inserts an order with fresh payment and shipping legs. Used by
// the seed loader; storefront checkout lives in another system.
func (s *Store) CreateOrder(ctx context.Context, o *model.Order, payment *model.Payment, shipping *model.Shipping, addr *model.Address) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	addrID, err := s.txInsert(ctx, tx,
		`INSERT INTO addresses (line1, line2, city, region, postal_code, country)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		addr.Line1, addr.Line2, addr.City, addr.Region, addr.PostalCode, addr.Country)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	addr.ID = addrID

	payID, err := s.txInsert(ctx, tx,
		"INSERT INTO payments (status, method, amount) VALUES (?, ?, ?)",
		payment.Status, payment.Method, payment.Amount)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	payment.ID = payID

	shipID, err := s.txInsert(ctx, tx,
		"INSERT INTO shipping (status, carrier, tracking, address_id) VALUES (?, ?, ?, ?)",
		shipping.Status, shipping.Carrier, shipping.Tracking, addrID)
	if err != nil {
		return fmt.Errorf("insert shipping: %w", err)
	}
	shipping.ID = shipID

	orderID, err := s.txInsert(ctx, tx,
		`INSERT INTO orders (customer_id, payment_id, shipping_id, total, ordered_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		o.CustomerID, payID, shipID, o.Total)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = orderID
	o.PaymentID = payID
	o.ShippingID = shipID

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) getPayment(ctx context.Context, id int64) (*model.Payment, error) {
	var p model.Payment
	err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT * FROM payments WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (s *Store) getShipping(ctx context.Context, id int64) (*model.Shipping, error) {
	var sh model.Shipping
	err := s.db.GetContext(ctx, &sh, s.db.Rebind("SELECT * FROM shipping WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipping: %w", err)
	}
	return &sh, nil
}
