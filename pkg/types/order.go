package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusShipped OrderStatus = "SHIPPED"
)

// PaymentStatus is the outcome of a payment attempt
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
)

// PaymentMethodSimulated is the only payment method; payments always succeed.
const PaymentMethodSimulated = "SIMULATED_CARD"

// CartLine is one requested product and quantity
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CustomerRef identifies the customer who placed an order
type CustomerRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SupplierRef identifies the supplier owning a product
type SupplierRef struct {
	ID           int64  `json:"id"`
	BusinessName string `json:"business_name"`
}

// ProductRef is the product as seen from an order line
type ProductRef struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Supplier SupplierRef `json:"supplier"`
}

// OrderItem is one line of an order. PriceAtPurchase is a snapshot taken at
// placement and never follows later product price changes.
type OrderItem struct {
	ID              int64           `json:"id"`
	Product         ProductRef      `json:"product"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// Subtotal returns quantity x price at purchase
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment is the simulated payment recorded with every order
type Payment struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Shipping is the tracking record attached when an order ships
type Shipping struct {
	ID              int64     `json:"id"`
	TrackingNumber  string    `json:"tracking_number"`
	ShippingCompany string    `json:"shipping_company"`
	ShippedAt       time.Time `json:"shipped_at"`
}

// Order is the aggregate root. References point forward only: an order knows
// its items, payment and shipping; none of them point back.
type Order struct {
	ID              int64           `json:"id"`
	Customer        CustomerRef     `json:"customer"`
	CreatedAt       time.Time       `json:"created_at"`
	Status          OrderStatus     `json:"status"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	Payment         Payment         `json:"payment"`
	Shipping        *Shipping       `json:"shipping,omitempty"`
}

// NewOrder starts a pending order for customer. Items are added with AddItem
// and the payment with Pay before the aggregate is persisted.
func NewOrder(customer *User, shippingAddress string, now time.Time) *Order {
	return &Order{
		Customer: CustomerRef{
			ID:       customer.ID,
			Username: customer.Username,
			Email:    customer.Email,
		},
		CreatedAt:       now,
		Status:          OrderStatusPending,
		Total:           decimal.Zero,
		ShippingAddress: shippingAddress,
		Items:           make([]OrderItem, 0),
	}
}

// AddItem appends a line priced at the product's current price and adds its
// subtotal to the order total.
func (o *Order) AddItem(product *Product, quantity int) OrderItem {
	item := OrderItem{
		Product: ProductRef{
			ID:       product.ID,
			Name:     product.Name,
			Supplier: SupplierRef{ID: product.SupplierID},
		},
		Quantity:        quantity,
		PriceAtPurchase: product.Price,
	}
	o.Items = append(o.Items, item)
	o.Total = o.Total.Add(item.Subtotal())
	return item
}

// Pay records the simulated payment for the current total
func (o *Order) Pay(transactionID string, now time.Time) {
	o.Payment = Payment{
		Amount:        o.Total,
		Status:        PaymentStatusSuccess,
		Method:        PaymentMethodSimulated,
		TransactionID: transactionID,
		CreatedAt:     now,
	}
}

// IsShipped reports whether the order has left the warehouse
func (o *Order) IsShipped() bool {
	return o.Status == OrderStatusShipped
}

// HasSupplier reports whether any line belongs to supplierID
func (o *Order) HasSupplier(supplierID int64) bool {
	for _, item := range o.Items {
		if item.Product.Supplier.ID == supplierID {
			return true
		}
	}
	return false
}
