package model

import "time"

// Payment lifecycle states.
const (
	PaymentPending   = "PENDING"
	PaymentPaid      = "PAID"
	PaymentFailed    = "FAILED"
	PaymentCancelled = "CANCELLED"
)

// Shipping lifecycle states.
const (
	ShippingPending   = "PENDING"
	ShippingShipped   = "SHIPPED"
	ShippingDelivered = "DELIVERED"
	ShippingCancelled = "CANCELLED"
	ShippingReturned  = "RETURNED"
)

// Order is a placed storefront order. Payment and shipping live in their own
// rows; cancelling an order flips both to CANCELLED.
type Order struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	PaymentID  int64     `json:"payment_id" db:"payment_id"`
	ShippingID int64     `json:"shipping_id" db:"shipping_id"`
	Total      int64     `json:"total" db:"total"` // minor currency units
	OrderedAt  time.Time `json:"ordered_at" db:"ordered_at"`
}

// Payment records the payment leg of an order.
type Payment struct {
	ID        int64     `json:"id" db:"id"`
	Status    string    `json:"status" db:"status"`
	Method    string    `json:"method" db:"method"`
	Amount    int64     `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Shipping records the fulfilment leg of an order.
type Shipping struct {
	ID        int64     `json:"id" db:"id"`
	Status    string    `json:"status" db:"status"`
	Carrier   string    `json:"carrier" db:"carrier"`
	Tracking  string    `json:"tracking" db:"tracking"`
	AddressID int64     `json:"address_id" db:"address_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Address is a shipping destination.
type Address struct {
	ID         int64  `json:"id" db:"id"`
	Line1      string `json:"line1" db:"line1"`
	Line2      string `json:"line2" db:"line2"`
	City       string `json:"city" db:"city"`
	Region     string `json:"region" db:"region"`
	PostalCode string `json:"postal_code" db:"postal_code"`
	Country    string `json:"country" db:"country"`
}

// OrderSummary is the list-endpoint projection of an order with its payment
// and shipping legs embedded.
type OrderSummary struct {
	Order
	Payment  *Payment  `json:"payment"`
	Shipping *Shipping `json:"shipping"`
}

// OrderDetail additionally carries the customer and the shipping address.
type OrderDetail struct {
	OrderSummary
	Customer *Customer `json:"customer"`
	Address  *Address  `json:"address"`
}
