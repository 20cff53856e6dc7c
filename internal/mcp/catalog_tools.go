package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/dropship-mcp/internal/catalog"
	"github.com/dshills/dropship-mcp/pkg/types"
)

func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, s.toMCPError("list_categories", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"categories": categories})), nil
}

func (s *Server) handleCreateCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if _, err := s.authorize(ctx, args, types.RoleAdmin); err != nil {
		return nil, err
	}

	category, err := s.catalog.CreateCategory(ctx, categoryRequest(args))
	if err != nil {
		return nil, s.toMCPError("create_category", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"category": category})), nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if _, err := s.authorize(ctx, args, types.RoleAdmin); err != nil {
		return nil, err
	}
	categoryID, err := requireID(args, "category_id")
	if err != nil {
		return nil, err
	}

	category, err := s.catalog.UpdateCategory(ctx, categoryID, categoryRequest(args))
	if err != nil {
		return nil, s.toMCPError("update_category", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"category": category})), nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if _, err := s.authorize(ctx, args, types.RoleAdmin); err != nil {
		return nil, err
	}
	categoryID, err := requireID(args, "category_id")
	if err != nil {
		return nil, err
	}

	if err := s.catalog.DeleteCategory(ctx, categoryID); err != nil {
		return nil, s.toMCPError("delete_category", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"deleted":     true,
		"category_id": categoryID,
	})), nil
}

func (s *Server) handleListProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, s.toMCPError("list_products", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"products": products})), nil
}

func (s *Server) handleGetProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	productID, err := requireID(args, "product_id")
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, s.toMCPError("get_product", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"product": product})), nil
}

func (s *Server) handleListMyProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	caller, err := s.authorize(ctx, args, types.RoleSupplier, types.RoleAdmin)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.ListSupplierProducts(ctx, caller)
	if err != nil {
		return nil, s.toMCPError("list_my_products", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"products": products})), nil
}

func (s *Server) handleCreateProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	caller, err := s.authorize(ctx, args, types.RoleSupplier, types.RoleAdmin)
	if err != nil {
		return nil, err
	}
	req, err := productRequest(args)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.CreateProduct(ctx, caller, req)
	if err != nil {
		return nil, s.toMCPError("create_product", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"product": product})), nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	caller, err := s.authorize(ctx, args, types.RoleSupplier, types.RoleAdmin)
	if err != nil {
		return nil, err
	}
	productID, err := requireID(args, "product_id")
	if err != nil {
		return nil, err
	}
	req, err := productRequest(args)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.UpdateProduct(ctx, caller, productID, req)
	if err != nil {
		return nil, s.toMCPError("update_product", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"product": product})), nil
}

func (s *Server) handleDeleteProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	caller, err := s.authorize(ctx, args, types.RoleSupplier, types.RoleAdmin)
	if err != nil {
		return nil, err
	}
	productID, err := requireID(args, "product_id")
	if err != nil {
		return nil, err
	}

	if err := s.catalog.DeleteProduct(ctx, caller, productID); err != nil {
		return nil, s.toMCPError("delete_product", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"deleted":    true,
		"product_id": productID,
	})), nil
}

func categoryRequest(args map[string]interface{}) catalog.CategoryRequest {
	return catalog.CategoryRequest{
		Name:        getStringDefault(args, "name", ""),
		Description: getStringDefault(args, "description", ""),
	}
}

func productRequest(args map[string]interface{}) (catalog.ProductRequest, error) {
	price, err := requireDecimal(args, "price")
	if err != nil {
		return catalog.ProductRequest{}, err
	}
	categoryID, err := requireID(args, "category_id")
	if err != nil {
		return catalog.ProductRequest{}, err
	}
	return catalog.ProductRequest{
		Name:        getStringDefault(args, "name", ""),
		Description: getStringDefault(args, "description", ""),
		ImageURL:    getStringDefault(args, "image_url", ""),
		Price:       price,
		CategoryID:  categoryID,
	}, nil
}
