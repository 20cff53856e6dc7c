package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dshills/dropship-mcp/internal/orders"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeForbidden     = -32003 // Caller lacks the role or ownership
	ErrorCodeConflict      = -32009 // Request conflicts with current state
	ErrorCodeNotFound      = -32010 // Referenced entity does not exist
)

// handlePlaceOrder handles the place_order tool invocation
func (s *Server) handlePlaceOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	caller, err := s.authorize(ctx, args, types.RoleCustomer)
	if err != nil {
		return nil, err
	}

	items, err := parseCart(args["items"])
	if err != nil {
		return nil, err
	}

	order, err := s.orders.PlaceOrder(ctx, caller.Username, orders.PlaceOrderRequest{
		ShippingAddress: getStringDefault(args, "shipping_address", ""),
		Items:           items,
	})
	if err != nil {
		return nil, s.toMCPError("place_order", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"order": order})), nil
}

// handleShipOrder handles the ship_order tool invocation
func (s *Server) handleShipOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	if _, err := s.authorize(ctx, args, types.RoleAdmin, types.RoleSupplier, types.RoleStaff); err != nil {
		return nil, err
	}

	orderID, err := requireID(args, "order_id")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.ShipOrder(ctx, orderID, orders.ShipOrderRequest{
		TrackingNumber:  getStringDefault(args, "tracking_number", ""),
		ShippingCompany: getStringDefault(args, "shipping_company", ""),
	})
	if err != nil {
		return nil, s.toMCPError("ship_order", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"order": order})), nil
}

// handleListOrders handles the list_orders tool invocation
func (s *Server) handleListOrders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	caller, err := s.authorize(ctx, args, types.RoleCustomer, types.RoleSupplier, types.RoleAdmin)
	if err != nil {
		return nil, err
	}

	list, err := s.orders.ListOrders(ctx, caller)
	if err != nil {
		return nil, s.toMCPError("list_orders", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"scope":  orders.ResolveScope(caller.Roles).String(),
		"count":  len(list),
		"orders": list,
	})), nil
}

// handleGetOrder handles the get_order tool invocation
func (s *Server) handleGetOrder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	caller, err := s.authorize(ctx, args, types.RoleCustomer, types.RoleSupplier, types.RoleAdmin)
	if err != nil {
		return nil, err
	}
	orderID, err := requireID(args, "order_id")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, caller, orderID)
	if err != nil {
		return nil, s.toMCPError("get_order", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"order": order})), nil
}

// handleGetInventory handles the get_inventory tool invocation
func (s *Server) handleGetInventory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	productID, err := requireID(args, "product_id")
	if err != nil {
		return nil, err
	}

	inv, err := s.ledger.Get(ctx, productID)
	if err != nil {
		return nil, s.toMCPError("get_inventory", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"inventory": inv})), nil
}

// handleSetInventory handles the set_inventory tool invocation
func (s *Server) handleSetInventory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	if _, err := s.authorize(ctx, args, types.RoleSupplier, types.RoleAdmin); err != nil {
		return nil, err
	}
	productID, err := requireID(args, "product_id")
	if err != nil {
		return nil, err
	}
	quantity, err := requireInt(args, "quantity")
	if err != nil {
		return nil, err
	}

	inv, err := s.ledger.Set(ctx, productID, quantity)
	if err != nil {
		return nil, s.toMCPError("set_inventory", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"inventory": inv,
		"message":   fmt.Sprintf("Inventory updated successfully to %d", inv.Quantity),
	})), nil
}

// handleAdjustInventory handles the adjust_inventory tool invocation
func (s *Server) handleAdjustInventory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	if _, err := s.authorize(ctx, args, types.RoleSupplier, types.RoleAdmin); err != nil {
		return nil, err
	}
	productID, err := requireID(args, "product_id")
	if err != nil {
		return nil, err
	}
	delta, err := requireInt(args, "delta")
	if err != nil {
		return nil, err
	}

	inv, err := s.ledger.Adjust(ctx, productID, delta)
	if err != nil {
		return nil, s.toMCPError("adjust_inventory", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"inventory": inv})), nil
}

// Helper functions

// authorize authenticates the username and password arguments and checks the
// account holds one of allowed.
func (s *Server) authorize(ctx context.Context, args map[string]interface{}, allowed ...types.Role) (types.Caller, error) {
	username := strings.TrimSpace(getStringDefault(args, "username", ""))
	if username == "" {
		return types.Caller{}, newMCPError(ErrorCodeInvalidParams, "username parameter is required", map[string]interface{}{
			"param":  "username",
			"reason": "missing or empty",
		})
	}

	password := getStringDefault(args, "password", "")
	if password == "" {
		return types.Caller{}, newMCPError(ErrorCodeInvalidParams, "password parameter is required", map[string]interface{}{
			"param":  "password",
			"reason": "missing or empty",
		})
	}

	caller, err := s.accounts.ResolveCaller(ctx, username, password)
	if err != nil {
		return types.Caller{}, s.toMCPError("authorize", err)
	}

	for _, role := range allowed {
		if types.HasRole(caller.Roles, role) {
			return caller, nil
		}
	}
	return types.Caller{}, newMCPError(ErrorCodeForbidden, "caller lacks a required role", map[string]interface{}{
		"username": username,
		"allowed":  allowed,
	})
}

// toMCPError maps a service error to an MCP error. Domain errors keep their
// message; anything else is logged and reported as internal.
func (s *Server) toMCPError(tool string, err error) error {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return err
	}

	data := map[string]interface{}{}
	var stockErr *types.InsufficientStockError
	if errors.As(err, &stockErr) {
		data["product_id"] = stockErr.ProductID
		data["product_name"] = stockErr.ProductName
		data["available"] = stockErr.Available
		data["requested"] = stockErr.Requested
	}

	switch types.CategoryOf(err) {
	case types.ErrNotFound:
		return newMCPError(ErrorCodeNotFound, err.Error(), data)
	case types.ErrConflict:
		return newMCPError(ErrorCodeConflict, err.Error(), data)
	case types.ErrForbidden:
		return newMCPError(ErrorCodeForbidden, err.Error(), data)
	case types.ErrInvalidArgument:
		return newMCPError(ErrorCodeInvalidParams, err.Error(), data)
	}

	s.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	return newMCPError(ErrorCodeInternalError, tool+" failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// requireInt extracts a whole-number parameter within the int32 range
func requireInt(args map[string]interface{}, key string) (int, error) {
	switch val := args[key].(type) {
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt32 && val <= math.MaxInt32 {
			return int(val), nil
		}
	case int:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return val, nil
		}
	case int64:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return int(val), nil
		}
	case nil:
		return 0, newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing",
		})
	}
	return 0, newMCPError(ErrorCodeInvalidParams, key+" must be a 32-bit integer", map[string]interface{}{
		"param": key,
		"value": args[key],
	})
}

// requireID extracts a positive identifier parameter
func requireID(args map[string]interface{}, key string) (int64, error) {
	id, err := requireInt(args, key)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, newMCPError(ErrorCodeInvalidParams, key+" must be positive", map[string]interface{}{
			"param": key,
			"value": id,
		})
	}
	return int64(id), nil
}

// requireDecimal extracts an exact decimal given as a string or a number
func requireDecimal(args map[string]interface{}, key string) (decimal.Decimal, error) {
	switch val := args[key].(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err == nil {
			return d, nil
		}
	case float64:
		return decimal.NewFromFloat(val), nil
	case nil:
		return decimal.Zero, newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing",
		})
	}
	return decimal.Zero, newMCPError(ErrorCodeInvalidParams, key+" must be a decimal number", map[string]interface{}{
		"param": key,
		"value": args[key],
	})
}

// parseCart converts the items array into cart lines
func parseCart(raw interface{}) ([]types.CartLine, error) {
	list, ok := raw.([]interface{})
	if !ok || len(list) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "items must be a non-empty array", map[string]interface{}{
			"param": "items",
		})
	}

	lines := make([]types.CartLine, 0, len(list))
	for i, entry := range list {
		item, ok := entry.(map[string]interface{})
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("items[%d] must be an object", i), nil)
		}
		productID, err := requireID(item, "product_id")
		if err != nil {
			return nil, err
		}
		quantity, err := requireInt(item, "quantity")
		if err != nil {
			return nil, err
		}
		lines = append(lines, types.CartLine{ProductID: productID, Quantity: quantity})
	}
	return lines, nil
}
