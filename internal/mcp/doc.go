// Package mcp implements the Model Context Protocol (MCP) server for the
// dropship storefront.
//
// The server exposes the storefront as MCP tools over stdio:
//   - Orders: place_order, ship_order, list_orders, get_order
//   - Inventory: get_inventory, set_inventory, adjust_inventory
//   - Catalog: list_categories, create_category, update_category,
//     delete_category, list_products, get_product, list_my_products, create_product,
//     update_product, delete_product
//   - Accounts: register_user, list_users, toggle_user
//
// # Callers
//
// Protected tools take the caller's "username" and "password". The password
// is checked against the account's bcrypt hash, then the account's role is
// checked against the roles the tool allows:
//
//	place_order                       CUSTOMER
//	ship_order                        ADMIN, SUPPLIER, STAFF
//	list_orders, get_order            CUSTOMER, SUPPLIER, ADMIN
//	set_inventory, adjust_inventory   SUPPLIER, ADMIN
//	product writes, list_my_products  SUPPLIER, ADMIN
//	category writes, account admin    ADMIN
//
// Unknown users, wrong passwords and disabled accounts are refused on every
// protected tool. get_product, get_inventory, list_categories, list_products
// and register_user need no credentials.
//
// # Tool: place_order
//
//	Request:
//	{
//	  "name": "place_order",
//	  "arguments": {
//	    "username": "alice",
//	    "password": "password123",
//	    "shipping_address": "1 Main St",
//	    "items": [{"product_id": 1, "quantity": 2}]
//	  }
//	}
//
//	Response:
//	{
//	  "order": {
//	    "id": 17,
//	    "status": "PENDING",
//	    "total": "20",
//	    "items": [{"product": {"id": 1, "name": "Widget", ...}, "quantity": 2, "price_at_purchase": "10"}],
//	    "payment": {"status": "SUCCESS", "method": "SIMULATED_CARD", "transaction_id": "..."}
//	  }
//	}
//
// Prices and totals are decimal strings. Product prices passed to
// create_product and update_product should be strings too ("19.99");
// JSON numbers are accepted but may not be exact.
//
// # Error Handling
//
// Errors are returned as MCPError with a code by category:
//   - -32602: Invalid parameters
//   - -32603: Internal error
//   - -32003: Forbidden (bad credentials, missing role, not the product owner, disabled account)
//   - -32009: Conflict (insufficient stock, already shipped, duplicates, in use)
//   - -32010: Not found (user, product, order, category, supplier profile)
//
// An insufficient stock error carries product_id, product_name, available
// and requested in its data.
package mcp
