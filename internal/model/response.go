package model

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// ProductListResponse wraps the product list endpoint payload.
type ProductListResponse struct {
	Products []ProductSummary `json:"products"`
	Total    int64            `json:"total"`
}
