package storage

import (
	"context"

	"github.com/dshills/dropship-mcp/pkg/types"
)

// Store defines the persistence operations of the storefront. It is
// implemented both by the database handle and by a transaction, so the same
// code runs inside or outside RunAtomically.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, userID int64) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	ListUsers(ctx context.Context) ([]*types.User, error)
	SetUserEnabled(ctx context.Context, userID int64, enabled bool) error

	// Supplier operations
	CreateSupplier(ctx context.Context, supplier *types.Supplier) error
	GetSupplierByUser(ctx context.Context, userID int64) (*types.Supplier, error)

	// Category operations
	CreateCategory(ctx context.Context, category *types.Category) error
	GetCategory(ctx context.Context, categoryID int64) (*types.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*types.Category, error)
	UpdateCategory(ctx context.Context, category *types.Category) error
	DeleteCategory(ctx context.Context, categoryID int64) error
	ListCategories(ctx context.Context) ([]*types.Category, error)
	CategoryHasProducts(ctx context.Context, categoryID int64) (bool, error)

	// Product operations
	CreateProduct(ctx context.Context, product *types.Product) error
	GetProduct(ctx context.Context, productID int64) (*types.Product, error)
	UpdateProduct(ctx context.Context, product *types.Product) error
	DeleteProduct(ctx context.Context, productID int64) error
	ListProducts(ctx context.Context) ([]*types.Product, error)
	ListProductsBySupplier(ctx context.Context, supplierID int64) ([]*types.Product, error)
	ProductHasOrders(ctx context.Context, productID int64) (bool, error)

	// Inventory operations
	GetInventory(ctx context.Context, productID int64) (*types.Inventory, error)
	EnsureInventory(ctx context.Context, productID int64) (*types.Inventory, error)
	SetInventory(ctx context.Context, productID int64, quantity int) (*types.Inventory, error)
	AdjustInventory(ctx context.Context, productID int64, delta int) (*types.Inventory, error)

	// Order operations
	CreateOrder(ctx context.Context, order *types.Order) error
	GetOrder(ctx context.Context, orderID int64) (*types.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*types.Order, error)
	CreateShipping(ctx context.Context, orderID int64, shipping *types.Shipping) error
	MarkOrderShipped(ctx context.Context, orderID int64) error
}

// Storage is a Store that owns a database connection and a transaction boundary
type Storage interface {
	Store

	// RunAtomically runs fn inside one transaction. The transaction commits
	// when fn returns nil and rolls back otherwise. A transaction that fails
	// because the database is busy is retried from the start.
	RunAtomically(ctx context.Context, fn func(tx Store) error) error

	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx represents a database transaction
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// OrderFilter narrows ListOrders. Zero fields do not filter; when both are
// set an order must match both.
type OrderFilter struct {
	CustomerID int64 // Orders placed by this user
	SupplierID int64 // Orders with at least one item from this supplier
}
