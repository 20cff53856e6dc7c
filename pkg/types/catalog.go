package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the authority a user acts with
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSupplier Role = "SUPPLIER"
	RoleStaff    Role = "STAFF"
	RoleAdmin    Role = "ADMIN"
)

// AllRoles lists every known role
var AllRoles = []Role{RoleCustomer, RoleSupplier, RoleStaff, RoleAdmin}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// HasRole reports whether roles contains want
func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// User is an account of the storefront
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// Supplier is the business profile owned by a supplier user
type Supplier struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	BusinessName string `json:"business_name"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// Category groups products
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a sellable item owned by one supplier
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"category_id"`
	SupplierID  int64           `json:"supplier_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the product invariants
func (p *Product) Validate() error {
	if p.Name == "" {
		return Invalidf("product name is required")
	}
	if p.Price.IsNegative() {
		return Invalidf("price must not be negative, got %s", p.Price.String())
	}
	if p.CategoryID <= 0 {
		return Invalidf("category id is required")
	}
	return nil
}

// Inventory is the stock counter of one product
type Inventory struct {
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Caller is an authenticated user and the roles it holds. Authentication
// happens upstream; services trust the values.
type Caller struct {
	Username string
	Roles    []Role
}

// IsAdmin reports whether the caller holds the ADMIN role
func (c Caller) IsAdmin() bool {
	return HasRole(c.Roles, RoleAdmin)
}
