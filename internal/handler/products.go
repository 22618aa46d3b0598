package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/store"
)

// ProductHandler serves the catalog CRUD endpoints.
type ProductHandler struct {
	store *store.Store
}

// NewProductHandler creates the product handler.
func NewProductHandler(st *store.Store) *ProductHandler {
	return &ProductHandler{store: st}
}

// List returns a page of products with category summaries and a thumbnail.
// GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	search := r.URL.Query().Get("search")

	products, err := h.store.ListProducts(r.Context(), limit, offset, search)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products: "+err.Error())
		return
	}
	total, err := h.store.CountProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count products: "+err.Error())
		return
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	categories, err := h.store.ProductCategories(r.Context(), ids)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load categories: "+err.Error())
		return
	}
	media, err := h.store.ProductMediafiles(r.Context(), ids)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load mediafiles: "+err.Error())
		return
	}

	summaries := make([]model.ProductSummary, 0, len(products))
	for _, p := range products {
		s := model.ProductSummary{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			IsHidden:    p.Hidden,
			Categories:  categorySummaries(categories[p.ID]),
			Stock:       p.Stock,
			CreatedAt:   p.CreatedAt,
		}
		if m := media[p.ID]; len(m) > 0 {
			s.ThumbnailImg = &m[0].URL
		}
		summaries = append(summaries, s)
	}

	writeJSON(w, http.StatusOK, model.ProductListResponse{
		Products: summaries,
		Total:    total,
	})
}

// Get returns one product with every media URL.
// GET /products/{productID}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load product: "+err.Error())
		return
	}

	detail, err := h.productDetail(r, product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// productRequest is the payload for Create and Update.
type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Stock       int64   `json:"stock"`
	Categories  []int64 `json:"categories"`
}

// Create inserts a product with its category links.
// POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := h.store.CreateProduct(r.Context(), product, req.Categories); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product: "+err.Error())
		return
	}

	detail, err := h.productDetail(r, product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// Update overwrites a product's fields and category links.
// PUT /products/{productID}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req productRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product := &model.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := h.store.UpdateProduct(r.Context(), product, req.Categories); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update product: "+err.Error())
		return
	}

	updated, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product: "+err.Error())
		return
	}
	detail, err := h.productDetail(r, updated)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load product: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// visibilityRequest is the payload for SetVisibility.
type visibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// SetVisibility flips the hidden flag.
// PATCH /products/{productID}/visibility
func (h *ProductHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req visibilityRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.store.SetProductHidden(r.Context(), id, req.Hidden); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update product: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a product.
// DELETE /products/{productID}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete product: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mediafileRequest is the payload for AddMediafile.
type mediafileRequest struct {
	URL string `json:"url"`
}

// AddMediafile registers an already-uploaded blob URL against a product.
// POST /products/{productID}/mediafiles
func (h *ProductHandler) AddMediafile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req mediafileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	media, err := h.store.AddProductMediafile(r.Context(), id, req.URL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to register mediafile: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, media)
}

// DeleteMediafile removes a media asset.
// DELETE /mediafiles/{mediafileID}
func (h *ProductHandler) DeleteMediafile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "mediafileID")
	if !ok {
		return
	}

	if err := h.store.DeleteMediafile(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Mediafile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete mediafile: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) productDetail(r *http.Request, p *model.Product) (*model.ProductDetail, error) {
	categories, err := h.store.ProductCategories(r.Context(), []int64{p.ID})
	if err != nil {
		return nil, err
	}
	media, err := h.store.ProductMediafiles(r.Context(), []int64{p.ID})
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(media[p.ID]))
	for _, m := range media[p.ID] {
		urls = append(urls, m.URL)
	}

	return &model.ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Categories:  categorySummaries(categories[p.ID]),
		Mediafiles:  urls,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		IsHidden:    p.Hidden,
	}, nil
}

// categorySummaries projects categories into the response shape; the slug is
// surfaced as the id.
func categorySummaries(categories []model.Category) []model.CategorySummary {
	out := make([]model.CategorySummary, 0, len(categories))
	for _, c := range categories {
		out = append(out, model.CategorySummary{
			ID:          c.Slug,
			Name:        c.Name,
			Description: c.Description,
		})
	}
	return out
}

// pathID parses a numeric id path parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id: "+raw)
		return 0, false
	}
	return id, true
}
