package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tiendify/tiendify/internal/model"
	"github.com/tiendify/tiendify/internal/store"
)

// registerTools registers the shop MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Catalog tools -----

	srv.AddTool(
		mcp.NewTool("shop_list_products",
			mcp.WithDescription(
				"List products in the shop catalog with their price, stock, categories, "+
					"and visibility. Supports name search and pagination.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("search",
				mcp.Description("Substring to match against product names"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of products to return (default 25, max 100)"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of products to skip for pagination"),
			),
		),
		s.handleListProducts,
	)

	srv.AddTool(
		mcp.NewTool("shop_get_product",
			mcp.WithDescription(
				"Get a single product by id, including its categories and media URLs.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Numeric product id"),
			),
		),
		s.handleGetProduct,
	)

	srv.AddTool(
		mcp.NewTool("shop_list_categories",
			mcp.WithDescription(
				"List all product categories with their slug, name, and description.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListCategories,
	)

	// ----- Customer and order tools -----

	srv.AddTool(
		mcp.NewTool("shop_list_customers",
			mcp.WithDescription(
				"List customer accounts with their email and profile fields.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of customers to return (default 25, max 100)"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of customers to skip for pagination"),
			),
		),
		s.handleListCustomers,
	)

	srv.AddTool(
		mcp.NewTool("shop_list_orders",
			mcp.WithDescription(
				"List orders with their payment and shipping status. Most recent first.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of orders to return (default 25, max 100)"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of orders to skip for pagination"),
			),
		),
		s.handleListOrders,
	)

	srv.AddTool(
		mcp.NewTool("shop_get_order",
			mcp.WithDescription(
				"Get a single order by id, including the customer, payment, shipping, "+
					"and delivery address.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Numeric order id"),
			),
		),
		s.handleGetOrder,
	)
}

// handleListProducts returns a page of the catalog with categories attached.
func (s *MCPServer) handleListProducts(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	search := optionalString(request, "search")
	limit := clamp(optionalInt(request, "limit", 25), 1, 100)
	offset := optionalInt(request, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	products, err := s.store.ListProducts(ctx, limit, offset, search)
	if err != nil {
		return toolError("list products: %v", err)
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	categories, err := s.store.ProductCategories(ctx, ids)
	if err != nil {
		return toolError("load product categories: %v", err)
	}

	type productRow struct {
		model.Product
		Categories []model.Category `json:"categories"`
	}
	rows := make([]productRow, len(products))
	for i, p := range products {
		rows[i] = productRow{Product: p, Categories: categories[p.ID]}
	}

	return successJSON(rows)
}

// handleGetProduct returns one product with categories and media.
func (s *MCPServer) handleGetProduct(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	id, err := requireInt(request, "id")
	if err != nil {
		return toolError("%v", err)
	}

	product, err := s.store.GetProduct(ctx, int64(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return toolError("Product %d not found.", id)
		}
		return toolError("get product: %v", err)
	}

	categories, err := s.store.ProductCategories(ctx, []int64{product.ID})
	if err != nil {
		return toolError("load product categories: %v", err)
	}
	media, err := s.store.ProductMediafiles(ctx, []int64{product.ID})
	if err != nil {
		return toolError("load product media: %v", err)
	}

	return successJSON(struct {
		model.Product
		Categories []model.Category  `json:"categories"`
		Mediafiles []model.Mediafile `json:"mediafiles"`
	}{
		Product:    *product,
		Categories: categories[product.ID],
		Mediafiles: media[product.ID],
	})
}

// handleListCategories returns every category.
func (s *MCPServer) handleListCategories(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return toolError("list categories: %v", err)
	}

	return successJSON(categories)
}

// handleListCustomers returns a page of customer accounts.
func (s *MCPServer) handleListCustomers(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	limit := clamp(optionalInt(request, "limit", 25), 1, 100)
	offset := optionalInt(request, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	customers, err := s.store.ListCustomers(ctx, limit, offset)
	if err != nil {
		return toolError("list customers: %v", err)
	}

	return successJSON(customers)
}

// handleListOrders returns a page of orders with payment and shipping legs.
func (s *MCPServer) handleListOrders(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	limit := clamp(optionalInt(request, "limit", 25), 1, 100)
	offset := optionalInt(request, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	orders, err := s.store.ListOrders(ctx, limit, offset)
	if err != nil {
		return toolError("list orders: %v", err)
	}

	return successJSON(orders)
}

// handleGetOrder returns one order with its customer and address.
func (s *MCPServer) handleGetOrder(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	id, err := requireInt(request, "id")
	if err != nil {
		return toolError("%v", err)
	}

	order, err := s.store.GetOrder(ctx, int64(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return toolError("Order %d not found.", id)
		}
		return toolError("get order: %v", err)
	}

	return successJSON(order)
}
