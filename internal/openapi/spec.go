// Package openapi builds the OpenAPI 3 document describing the back-office
// API. The surface is fixed, so the document is assembled programmatically
// rather than generated from introspection.
package openapi

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Spec returns the OpenAPI document for the API served at baseURL.
func Spec(baseURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Tiendify Back-Office API",
			Description: "Storefront administration API: products, categories, customers, orders, and credentials.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["sessionCookies"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:        "apiKey",
			In:          "cookie",
			Name:        "access_token",
			Description: "Session cookie pair issued after /auth/authorize; the refresh_token cookie must accompany it.",
		},
	}
	doc.Components.SecuritySchemes["secretKey"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:        "http",
			Scheme:      "bearer",
			Description: "Service secret key issued via /auth/secret-keys.",
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{"sessionCookies": {}},
		{"secretKey": {}},
	}

	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
							"message": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
						},
					},
				},
			},
		},
	}

	doc.Paths = openapi3.NewPaths()

	addOp(doc, "/health", "get", "health", "Liveness probe", false)
	addOp(doc, "/readyz", "get", "health", "Readiness probe (store reachability)", false)

	addOp(doc, "/auth/login", "get", "auth", "Redirect to the identity provider's login page", false)
	addOp(doc, "/auth/authorize", "post", "auth", "Exchange the authorization code and set session cookies", false)
	addOp(doc, "/api/v1/auth/me", "get", "auth", "Current user's shop profile", true)
	addOp(doc, "/api/v1/auth/identity", "get", "auth", "Current session identity", true)
	addOp(doc, "/api/v1/auth/logout", "post", "auth", "Terminate the provider session and clear cookies", true)

	addOp(doc, "/api/v1/auth/secret-keys", "get", "secret keys", "List issued secret keys", true)
	addOp(doc, "/api/v1/auth/secret-keys", "post", "secret keys", "Issue a new secret key (plaintext returned once)", true)
	addOp(doc, "/api/v1/auth/secret-keys/{keyID}", "delete", "secret keys", "Retire a secret key", true)

	addOp(doc, "/api/v1/products", "get", "products", "List products", true)
	addOp(doc, "/api/v1/products", "post", "products", "Create a product", true)
	addOp(doc, "/api/v1/products/{productID}", "get", "products", "Get a product", true)
	addOp(doc, "/api/v1/products/{productID}", "put", "products", "Update a product", true)
	addOp(doc, "/api/v1/products/{productID}", "delete", "products", "Delete a product", true)
	addOp(doc, "/api/v1/products/{productID}/visibility", "patch", "products", "Show or hide a product", true)
	addOp(doc, "/api/v1/products/{productID}/mediafiles", "post", "products", "Register a mediafile URL", true)
	addOp(doc, "/api/v1/mediafiles/{mediafileID}", "delete", "products", "Delete a mediafile", true)

	addOp(doc, "/api/v1/categories", "get", "categories", "List categories", true)
	addOp(doc, "/api/v1/categories", "post", "categories", "Create a category", true)
	addOp(doc, "/api/v1/categories/{categorySlug}", "delete", "categories", "Delete a category", true)

	addOp(doc, "/api/v1/customers", "get", "customers", "List customers", true)

	addOp(doc, "/api/v1/orders", "get", "orders", "List orders", true)
	addOp(doc, "/api/v1/orders/{orderID}", "get", "orders", "Get an order", true)
	addOp(doc, "/api/v1/orders/{orderID}/cancel", "patch", "orders", "Cancel an order", true)

	return doc
}

func addOp(doc *openapi3.T, path, method, tag, summary string, secured bool) {
	op := openapi3.NewOperation()
	op.Summary = summary
	op.Tags = []string{tag}
	op.Responses = newResponses(secured)
	if !secured {
		op.Security = &openapi3.SecurityRequirements{}
	}

	item := doc.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(path, item)
	}
	item.SetOperation(strings.ToUpper(method), op)
}

// newResponses builds the shared response set: a generic success plus the
// error envelope for the statuses the auth gate and handlers produce.
func newResponses(secured bool) *openapi3.Responses {
	responses := openapi3.NewResponses()
	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)

	okDesc := "Success"
	responses.Set("200", &openapi3.ResponseRef{
		Value: &openapi3.Response{Description: &okDesc},
	})

	set := func(code, desc string) {
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}
	set("400", "Bad request")
	if secured {
		set("401", "Not authenticated")
		set("403", "Forbidden")
	}
	set("404", "Not found")

	return responses
}
