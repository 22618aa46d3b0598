package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	// -------------------------------------------------------------------
	// shop://summary — aggregate counts for the whole shop
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			"shop://summary",
			"Shop Summary",
			mcp.WithResourceDescription(
				"Aggregate counts for the shop: products, orders, and issued "+
					"secret keys. Useful as a quick orientation before drilling in.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleSummaryResource,
	)

	// -------------------------------------------------------------------
	// shop://categories — the full category tree
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			"shop://categories",
			"Product Categories",
			mcp.WithResourceDescription(
				"All product categories with their slug, name, and description.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleCategoriesResource,
	)
}

// handleSummaryResource returns aggregate shop counts.
func (s *MCPServer) handleSummaryResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	orders, err := s.store.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	keys, err := s.store.CountSecretKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count secret keys: %w", err)
	}

	summary := struct {
		Products   int64 `json:"products"`
		Orders     int64 `json:"orders"`
		SecretKeys int64 `json:"secret_keys"`
	}{
		Products:   products,
		Orders:     orders,
		SecretKeys: keys,
	}

	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "shop://summary",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

// handleCategoriesResource returns all categories as JSON.
func (s *MCPServer) handleCategoriesResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	b, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal categories: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "shop://categories",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
