package handler

import (
	"net/http"

	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/store"
)

// CustomerHandler serves the customer endpoints.
type CustomerHandler struct {
	store *store.Store
}

// NewCustomerHandler creates the customer handler.
func NewCustomerHandler(st *store.Store) *CustomerHandler {
	return &CustomerHandler{store: st}
}

// List returns a page of customers, newest first.
// GET /customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	customers, err := h.store.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers: "+err.Error())
		return
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}
