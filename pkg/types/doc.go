// Package types provides the domain types shared by every component of the
// dropship order-fulfillment server.
//
// # Catalog
//
// User, Supplier, Category, Product and Inventory describe the storefront.
// Prices are exact decimals (shopspring/decimal); a product's Inventory is
// created lazily at quantity zero.
//
// # Order Aggregate
//
// Order is built in memory and committed in a single write:
//
//	order := types.NewOrder(customer, "1 Main St", time.Now())
//	order.AddItem(product, 3)
//	order.Pay(uuid.NewString(), time.Now())
//
// AddItem captures the product's price at that moment. Later price changes
// never alter an existing order's items or total.
//
// # Errors
//
// Every domain error wraps one of four categories so callers can branch on
// either level:
//
//	errors.Is(err, types.ErrInsufficientStock) // specific
//	errors.Is(err, types.ErrConflict)          // category
//
// InsufficientStockError carries the product and the available quantity.
package types
