package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/service"
	"github.com/tiendify/tiendify/internal/store"
)

// SecretKeyHandler manages the bounded set of service credentials.
type SecretKeyHandler struct {
	keys *service.SecretKeys
}

// NewSecretKeyHandler creates the secret-key handler.
func NewSecretKeyHandler(keys *service.SecretKeys) *SecretKeyHandler {
	return &SecretKeyHandler{keys: keys}
}

// List returns every issued key. Hashes never leave the server; the prefix is
// what identifies a key to a human.
// GET /auth/secret-keys
func (h *SecretKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list secret keys: "+err.Error())
		return
	}
	if keys == nil {
		keys = []model.SecretKey{}
	}
	writeJSON(w, http.StatusOK, keys)
}

// createSecretKeyRequest is the expected payload for Create.
type createSecretKeyRequest struct {
	Name   string `json:"name"`
	Scopes string `json:"scopes,omitempty"`
}

// createSecretKeyResponse includes the plaintext secret (shown once only).
type createSecretKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Scopes    string    `json:"scopes"`
	SecretKey string    `json:"secret_key"` // Plaintext, shown ONCE.
	Prefix    string    `json:"prefix"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create issues a new secret key and returns the plaintext exactly once.
// POST /auth/secret-keys
func (h *SecretKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSecretKeyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	key, plaintext, err := h.keys.Create(r.Context(), req.Name, req.Scopes)
	if err != nil {
		if errors.Is(err, service.ErrQuotaExceeded) {
			writeError(w, http.StatusBadRequest,
				"You can only have a maximum of 10 secret keys")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create secret key: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, createSecretKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Scopes:    key.Scopes,
		SecretKey: plaintext,
		Prefix:    key.Prefix,
		Enabled:   key.Enabled,
		CreatedAt: key.CreatedAt,
		UpdatedAt: key.UpdatedAt,
	})
}

// Delete retires a key by id and returns the row that existed.
// DELETE /auth/secret-keys/{keyID}
func (h *SecretKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "keyID")

	key, err := h.keys.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Secret key not found: "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete secret key: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, key)
}
