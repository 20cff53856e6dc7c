package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// usernameProperty names the caller every protected tool takes
func usernameProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Username of the caller; roles are read from the account",
	}
}

// passwordProperty is checked against the account before any protected tool runs
func passwordProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Password of the calling account",
	}
}

func idProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     1,
	}
}

// placeOrderTool returns the tool definition for place_order
func placeOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "place_order",
		Description: "Place an order for the caller's cart. Reserves stock for every line or fails without changing anything",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": usernameProperty(),
				"password": passwordProperty(),
				"shipping_address": map[string]interface{}{
					"type":        "string",
					"description": "Delivery address",
				},
				"items": map[string]interface{}{
					"type":        "array",
					"description": "Cart lines, processed in the order given",
					"minItems":    1,
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"product_id": idProperty("Product to buy"),
							"quantity": map[string]interface{}{
								"type":    "integer",
								"minimum": 1,
							},
						},
						"required": []string{"product_id", "quantity"},
					},
				},
			},
			Required: []string{"username", "password", "shipping_address", "items"},
		},
	}
}

// shipOrderTool returns the tool definition for ship_order
func shipOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ship_order",
		Description: "Mark a pending order as shipped and record its tracking details (ADMIN, SUPPLIER or STAFF)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": usernameProperty(),
				"password": passwordProperty(),
				"order_id": idProperty("Order to ship"),
				"tracking_number": map[string]interface{}{
					"type":        "string",
					"description": "Carrier tracking number",
				},
				"shipping_company": map[string]interface{}{
					"type":        "string",
					"description": "Carrier name",
				},
			},
			Required: []string{"username", "password", "order_id", "tracking_number", "shipping_company"},
		},
	}
}

// listOrdersTool returns the tool definition for list_orders
func listOrdersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_orders",
		Description: "List the orders visible to the caller: all for admins, those containing their products for suppliers, their own for customers",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": usernameProperty(),
				"password": passwordProperty(),
			},
			Required: []string{"username", "password"},
		},
	}
}

// getOrderTool returns the tool definition for get_order
func getOrderTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_order",
		Description: "Fetch one order visible to the caller",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": usernameProperty(),
				"password": passwordProperty(),
				"order_id": idProperty("Order to fetch"),
			},
			Required: []string{"username", "password", "order_id"},
		},
	}
}

func getInventoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_inventory",
		Description: "Current stock of a product",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"product_id": idProperty("Product to inspect"),
			},
			Required: []string{"product_id"},
		},
	}
}

func setInventoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "set_inventory",
		Description: "Set the absolute stock of a product (SUPPLIER or ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username":   usernameProperty(),
				"password":   passwordProperty(),
				"product_id": idProperty("Product to restock"),
				"quantity": map[string]interface{}{
					"type":    "integer",
					"minimum": 0,
				},
			},
			Required: []string{"username", "password", "product_id", "quantity"},
		},
	}
}

func adjustInventoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "adjust_inventory",
		Description: "Add to or remove from a product's stock; fails if stock would go negative (SUPPLIER or ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username":   usernameProperty(),
				"password":   passwordProperty(),
				"product_id": idProperty("Product to adjust"),
				"delta": map[string]interface{}{
					"type":        "integer",
					"description": "Signed change in units",
				},
			},
			Required: []string{"username", "password", "product_id", "delta"},
		},
	}
}

func listCategoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_categories",
		Description: "List product categories",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func categoryProperties() map[string]interface{} {
	return map[string]interface{}{
		"username": usernameProperty(),
		"password": passwordProperty(),
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Unique category name",
		},
		"description": map[string]interface{}{
			"type": "string",
		},
	}
}

func createCategoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_category",
		Description: "Create a category (ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: categoryProperties(),
			Required:   []string{"username", "password", "name"},
		},
	}
}

func updateCategoryTool() mcp.Tool {
	props := categoryProperties()
	props["category_id"] = idProperty("Category to update")
	return mcp.Tool{
		Name:        "update_category",
		Description: "Rename or re-describe a category (ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"username", "password", "category_id", "name"},
		},
	}
}

func deleteCategoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_category",
		Description: "Delete a category that no product uses (ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username":    usernameProperty(),
				"password":    passwordProperty(),
				"category_id": idProperty("Category to delete"),
			},
			Required: []string{"username", "password", "category_id"},
		},
	}
}

func listProductsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_products",
		Description: "List every product in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func getProductTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_product",
		Description: "Get one product with its current price",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"product_id": idProperty("Product to fetch"),
			},
			Required: []string{"product_id"},
		},
	}
}

func listMyProductsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_my_products",
		Description: "List the products owned by the caller's supplier profile (SUPPLIER or ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": usernameProperty(),
				"password": passwordProperty(),
			},
			Required: []string{"username", "password"},
		},
	}
}

func productProperties() map[string]interface{} {
	return map[string]interface{}{
		"username": usernameProperty(),
		"password": passwordProperty(),
		"name": map[string]interface{}{
			"type": "string",
		},
		"description": map[string]interface{}{
			"type": "string",
		},
		"image_url": map[string]interface{}{
			"type": "string",
		},
		"price": map[string]interface{}{
			"type":        "string",
			"description": "Exact decimal price, e.g. \"19.99\"",
		},
		"category_id": idProperty("Category the product belongs to"),
	}
}

func createProductTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_product",
		Description: "Create a product owned by the caller's supplier profile, with zero stock (SUPPLIER or ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: productProperties(),
			Required:   []string{"username", "password", "name", "price", "category_id"},
		},
	}
}

func updateProductTool() mcp.Tool {
	props := productProperties()
	props["product_id"] = idProperty("Product to update")
	return mcp.Tool{
		Name:        "update_product",
		Description: "Update a product; suppliers may only change their own (SUPPLIER or ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"username", "password", "product_id", "name", "price", "category_id"},
		},
	}
}

func deleteProductTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_product",
		Description: "Delete a product that was never ordered; suppliers may only delete their own (SUPPLIER or ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username":   usernameProperty(),
				"password":   passwordProperty(),
				"product_id": idProperty("Product to delete"),
			},
			Required: []string{"username", "password", "product_id"},
		},
	}
}

func registerUserTool() mcp.Tool {
	return mcp.Tool{
		Name:        "register_user",
		Description: "Register a customer account",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": map[string]interface{}{
					"type": "string",
				},
				"email": map[string]interface{}{
					"type": "string",
				},
				"password": map[string]interface{}{
					"type":      "string",
					"minLength": 8,
				},
			},
			Required: []string{"username", "email", "password"},
		},
	}
}

func listUsersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_users",
		Description: "List every account (ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": usernameProperty(),
				"password": passwordProperty(),
			},
			Required: []string{"username", "password"},
		},
	}
}

func toggleUserTool() mcp.Tool {
	return mcp.Tool{
		Name:        "toggle_user",
		Description: "Enable a disabled account or disable an enabled one (ADMIN)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": usernameProperty(),
				"password": passwordProperty(),
				"user_id":  idProperty("Account to toggle"),
			},
			Required: []string{"username", "password", "user_id"},
		},
	}
}
