package store

import (
	"context"
	"errors"
	"testing"

	"github.com/tiendify/tiendify/internal/model"
)

func seedCustomer(t *testing.T, s *Store, email string) *model.Customer {
	t.Helper()
	c := &model.Customer{Email: email, FirstName: "Test", LastName: "Shopper", Phone: "555-0100"}
	if err := s.CreateCustomer(context.Background(), c); err != nil {
		t.Fatalf("create customer %q: %v", email, err)
	}
	return c
}

func seedOrder(t *testing.T, s *Store, customerID, total int64) *model.Order {
	t.Helper()
	o := &model.Order{CustomerID: customerID, Total: total}
	payment := &model.Payment{Status: model.PaymentPaid, Method: "card", Amount: total}
	shipping := &model.Shipping{Status: model.ShippingPending, Carrier: "DHL", Tracking: "TRACK-1"}
	addr := &model.Address{Line1: "1 Shop St", City: "Madrid", PostalCode: "28001", Country: "ES"}
	if err := s.CreateOrder(context.Background(), o, payment, shipping, addr); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestOrderRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cust := seedCustomer(t, s, "shopper@shop.example")
	order := seedOrder(t, s, cust.ID, 4500)

	detail, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if detail.Total != 4500 {
		t.Errorf("total = %d, want 4500", detail.Total)
	}
	if detail.Payment == nil || detail.Payment.Status != model.PaymentPaid {
		t.Errorf("payment = %+v, want PAID", detail.Payment)
	}
	if detail.Shipping == nil || detail.Shipping.Carrier != "DHL" {
		t.Errorf("shipping = %+v, want DHL", detail.Shipping)
	}
	if detail.Customer == nil || detail.Customer.Email != "shopper@shop.example" {
		t.Errorf("customer = %+v", detail.Customer)
	}
	if detail.Address == nil || detail.Address.City != "Madrid" {
		t.Errorf("address = %+v", detail.Address)
	}
}

func TestOrderNotFound(t *testing.T) {
	s := testStore(t)

	if _, err := s.GetOrder(context.Background(), 777); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOrder err = %v, want ErrNotFound", err)
	}
	if err := s.CancelOrder(context.Background(), 777); !errors.Is(err, ErrNotFound) {
		t.Errorf("CancelOrder err = %v, want ErrNotFound", err)
	}
}

func TestCancelOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cust := seedCustomer(t, s, "cancel@shop.example")
	order := seedOrder(t, s, cust.ID, 999)

	if err := s.CancelOrder(ctx, order.ID); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}

	detail, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if detail.Payment.Status != model.PaymentCancelled {
		t.Errorf("payment status = %q, want CANCELLED", detail.Payment.Status)
	}
	if detail.Shipping.Status != model.ShippingCancelled {
		t.Errorf("shipping status = %q, want CANCELLED", detail.Shipping.Status)
	}
}

func TestListOrders(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cust := seedCustomer(t, s, "bulk@shop.example")
	seedOrder(t, s, cust.ID, 100)
	seedOrder(t, s, cust.ID, 200)
	seedOrder(t, s, cust.ID, 300)

	orders, err := s.ListOrders(ctx, 20, 0)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("len(orders) = %d, want 3", len(orders))
	}
	for _, o := range orders {
		if o.Payment == nil || o.Shipping == nil {
			t.Errorf("order %d missing embedded legs: %+v", o.ID, o)
		}
	}

	n, err := s.CountOrders(ctx)
	if err != nil {
		t.Fatalf("CountOrders: %v", err)
	}
	if n != 3 {
		t.Errorf("CountOrders = %d, want 3", n)
	}
}

func TestCustomers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seedCustomer(t, s, "a@shop.example")
	seedCustomer(t, s, "b@shop.example")

	customers, err := s.ListCustomers(ctx, 20, 0)
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(customers) != 2 {
		t.Errorf("len(customers) = %d, want 2", len(customers))
	}

	c, err := s.GetCustomerByEmail(ctx, "a@shop.example")
	if err != nil {
		t.Fatalf("GetCustomerByEmail: %v", err)
	}
	if c.Email != "a@shop.example" {
		t.Errorf("email = %q", c.Email)
	}

	if _, err := s.GetCustomerByEmail(ctx, "nobody@shop.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCustomerByEmail(missing) err = %v, want ErrNotFound", err)
	}
}
