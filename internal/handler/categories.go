package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/store"
)

// CategoryHandler serves the category endpoints.
type CategoryHandler struct {
	store *store.Store
}

// NewCategoryHandler creates the category handler.
func NewCategoryHandler(st *store.Store) *CategoryHandler {
	return &CategoryHandler{store: st}
}

// List returns all categories.
// GET /categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories: "+err.Error())
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// createCategoryRequest is the payload for Create.
type createCategoryRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create inserts a new category.
// POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Slug == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "slug and name are required")
		return
	}

	category := &model.Category{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.store.CreateCategory(r.Context(), category); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create category: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// Delete removes a category by slug.
// DELETE /categories/{categorySlug}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "categorySlug")

	if err := h.store.DeleteCategoryBySlug(r.Context(), slug); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Category not found: "+slug)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete category: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
