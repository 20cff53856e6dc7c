package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/dropship-mcp/internal/accounts"
	"github.com/dshills/dropship-mcp/pkg/types"
)

func (s *Server) handleRegisterUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	user, err := s.accounts.Register(ctx, accounts.RegisterRequest{
		Username: getStringDefault(args, "username", ""),
		Email:    getStringDefault(args, "email", ""),
		Password: getStringDefault(args, "password", ""),
	})
	if err != nil {
		return nil, s.toMCPError("register_user", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"user": user})), nil
}

func (s *Server) handleListUsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if _, err := s.authorize(ctx, args, types.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.accounts.ListUsers(ctx)
	if err != nil {
		return nil, s.toMCPError("list_users", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count": len(users),
		"users": users,
	})), nil
}

func (s *Server) handleToggleUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if _, err := s.authorize(ctx, args, types.RoleAdmin); err != nil {
		return nil, err
	}
	userID, err := requireID(args, "user_id")
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.ToggleUser(ctx, userID)
	if err != nil {
		return nil, s.toMCPError("toggle_user", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"user": user})), nil
}
