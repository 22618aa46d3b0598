package handler

import (
	"fmt"
	"net/http"

	"github.com/tiendify/tiendify/internal/openapi"
)

// OpenAPIHandler serves the API description document.
type OpenAPIHandler struct {
	version string
}

// NewOpenAPIHandler creates the OpenAPI handler.
func NewOpenAPIHandler(version string) *OpenAPIHandler {
	return &OpenAPIHandler{version: version}
}

// ServeSpec serves the OpenAPI document, with the server URL derived from
// the request.
// GET /openapi.json
func (h *OpenAPIHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	baseURL := fmt.Sprintf("%s://%s", scheme, r.Host)
	writeJSON(w, http.StatusOK, openapi.Spec(baseURL, h.version))
}
