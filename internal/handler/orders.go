package handler

import (
	"errors"
	"net/http"

	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/store"
)

// OrderHandler serves the order endpoints. Orders are placed by the
// storefront; the back office only reads and cancels them.
type OrderHandler struct {
	store *store.Store
}

// NewOrderHandler creates the order handler.
func NewOrderHandler(st *store.Store) *OrderHandler {
	return &OrderHandler{store: st}
}

// List returns a page of orders, newest first.
// GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	orders, err := h.store.ListOrders(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders: "+err.Error())
		return
	}
	if orders == nil {
		orders = []model.OrderSummary{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get returns one order with its customer and shipping address.
// GET /orders/{orderID}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load order: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Cancel flips the order's payment and shipping to CANCELLED.
// PATCH /orders/{orderID}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderID")
	if !ok {
		return
	}

	if err := h.store.CancelOrder(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to cancel order: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
