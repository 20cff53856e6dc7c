package mcp

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/dropship-mcp/internal/accounts"
	"github.com/dshills/dropship-mcp/internal/catalog"
	"github.com/dshills/dropship-mcp/internal/events"
	"github.com/dshills/dropship-mcp/internal/inventory"
	"github.com/dshills/dropship-mcp/internal/orders"
	"github.com/dshills/dropship-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "dropship-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	storage   storage.Storage
	publisher events.Publisher
	logger    *zap.Logger

	accounts *accounts.Service
	catalog  *catalog.Service
	ledger   *inventory.Ledger
	orders   *orders.Service
}

// NewServer wires the services over store and registers every tool. The
// server takes ownership of store and publisher and closes them in Close.
func NewServer(store storage.Storage, publisher events.Publisher, logger *zap.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("storage is required")
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ledger := inventory.NewLedger(store, logger.Named("inventory"))

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		storage:   store,
		publisher: publisher,
		logger:    logger,
		accounts:  accounts.NewService(store, logger.Named("accounts")),
		catalog:   catalog.NewService(store, logger.Named("catalog")),
		ledger:    ledger,
		orders:    orders.NewService(store, ledger, publisher, logger.Named("orders")),
	}

	s.registerTools()
	return s, nil
}

// Serve runs the MCP protocol on stdin/stdout until the client disconnects
// or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	return s.Listen(ctx, os.Stdin, os.Stdout)
}

// Listen runs the MCP protocol over in and out. It returns nil when in
// reaches EOF or ctx is cancelled, after the read loop has stopped.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the publisher and the database
func (s *Server) Close() error {
	pubErr := s.publisher.Close()
	if err := s.storage.Close(); err != nil {
		return err
	}
	return pubErr
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Orders
	s.mcp.AddTool(placeOrderTool(), s.handlePlaceOrder)
	s.mcp.AddTool(shipOrderTool(), s.handleShipOrder)
	s.mcp.AddTool(listOrdersTool(), s.handleListOrders)
	s.mcp.AddTool(getOrderTool(), s.handleGetOrder)

	// Inventory
	s.mcp.AddTool(getInventoryTool(), s.handleGetInventory)
	s.mcp.AddTool(setInventoryTool(), s.handleSetInventory)
	s.mcp.AddTool(adjustInventoryTool(), s.handleAdjustInventory)

	// Catalog
	s.mcp.AddTool(listCategoriesTool(), s.handleListCategories)
	s.mcp.AddTool(createCategoryTool(), s.handleCreateCategory)
	s.mcp.AddTool(updateCategoryTool(), s.handleUpdateCategory)
	s.mcp.AddTool(deleteCategoryTool(), s.handleDeleteCategory)
	s.mcp.AddTool(listProductsTool(), s.handleListProducts)
	s.mcp.AddTool(getProductTool(), s.handleGetProduct)
	s.mcp.AddTool(listMyProductsTool(), s.handleListMyProducts)
	s.mcp.AddTool(createProductTool(), s.handleCreateProduct)
	s.mcp.AddTool(updateProductTool(), s.handleUpdateProduct)
	s.mcp.AddTool(deleteProductTool(), s.handleDeleteProduct)

	// Accounts
	s.mcp.AddTool(registerUserTool(), s.handleRegisterUser)
	s.mcp.AddTool(listUsersTool(), s.handleListUsers)
	s.mcp.AddTool(toggleUserTool(), s.handleToggleUser)
}
