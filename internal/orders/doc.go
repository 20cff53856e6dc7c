// Package orders implements order placement, shipment and role-scoped order
// visibility.
//
// # Placement
//
// PlaceOrder runs in one storage transaction. For each cart line, in the
// order given, it loads the product, reserves the quantity from the
// inventory ledger and adds a line priced at the product's current price.
// Any failing line aborts the whole order: no stock moves and no order is
// written.
//
//	order, err := svc.PlaceOrder(ctx, "alice", orders.PlaceOrderRequest{
//	    ShippingAddress: "1 Main St",
//	    Items:           []types.CartLine{{ProductID: 1, Quantity: 2}},
//	})
//	var stockErr *types.InsufficientStockError
//	if errors.As(err, &stockErr) {
//	    // stockErr.Available units of stockErr.ProductName are left
//	}
//
// # Shipment
//
// ShipOrder moves a PENDING order to SHIPPED and records tracking details.
// The status change is a conditional write, so of two concurrent calls for
// the same order exactly one succeeds and the other gets
// types.ErrAlreadyShipped.
//
// # Visibility
//
// ListOrders and GetOrder resolve the caller to one of three scopes:
// administrators see every order, suppliers see orders containing at least
// one of their products, and everyone else sees their own orders.
//
// Successful placements and shipments are announced through an
// events.Publisher after the transaction commits.
package orders
