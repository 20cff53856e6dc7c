package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/dropship-mcp/internal/events"
	"github.com/dshills/dropship-mcp/internal/inventory"
	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// shop is three customers, two suppliers with one product each, an admin and
// a staff member.
type shop struct {
	store     *storage.SQLiteStorage
	svc       *Service
	ledger    *inventory.Ledger
	recorder  *events.Recorder
	suppliers map[string]*types.Supplier
	widget    *types.Product // supplier1, 10.00
	gadget    *types.Product // supplier2, 2.50
}

func setupShop(t *testing.T) *shop {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	addUser := func(name string, role types.Role) *types.User {
		u := &types.User{
			Username:     name,
			Email:        fmt.Sprintf("%s@example.com", name),
			PasswordHash: "x",
			Role:         role,
			Enabled:      true,
		}
		require.NoError(t, store.CreateUser(ctx, u))
		return u
	}

	for _, name := range []string{"alice", "bob", "carol"} {
		addUser(name, types.RoleCustomer)
	}
	addUser("admin", types.RoleAdmin)
	addUser("staff", types.RoleStaff)
	addUser("newsupplier", types.RoleSupplier) // no profile

	suppliers := make(map[string]*types.Supplier)
	for name, business := range map[string]string{"supplier1": "MegaCorp Supplies", "supplier2": "Aries Ltd."} {
		u := addUser(name, types.RoleSupplier)
		sup := &types.Supplier{UserID: u.ID, BusinessName: business}
		require.NoError(t, store.CreateSupplier(ctx, sup))
		suppliers[name] = sup
	}

	category := &types.Category{Name: "Electronics"}
	require.NoError(t, store.CreateCategory(ctx, category))

	addProduct := func(name, price string, supplier *types.Supplier) *types.Product {
		p := &types.Product{
			Name:       name,
			Price:      decimal.RequireFromString(price),
			CategoryID: category.ID,
			SupplierID: supplier.ID,
		}
		require.NoError(t, store.CreateProduct(ctx, p))
		return p
	}

	logger := zaptest.NewLogger(t)
	ledger := inventory.NewLedger(store, logger)
	recorder := &events.Recorder{}

	return &shop{
		store:     store,
		svc:       NewService(store, ledger, recorder, logger),
		ledger:    ledger,
		recorder:  recorder,
		suppliers: suppliers,
		widget:    addProduct("Widget", "10.00", suppliers["supplier1"]),
		gadget:    addProduct("Gadget", "2.50", suppliers["supplier2"]),
	}
}

func (s *shop) stock(t *testing.T, product *types.Product, qty int) {
	t.Helper()
	_, err := s.ledger.Set(context.Background(), product.ID, qty)
	require.NoError(t, err)
}

func (s *shop) quantity(t *testing.T, product *types.Product) int {
	t.Helper()
	inv, err := s.ledger.Get(context.Background(), product.ID)
	require.NoError(t, err)
	return inv.Quantity
}

func (s *shop) place(t *testing.T, username string, lines ...types.CartLine) *types.Order {
	t.Helper()
	order, err := s.svc.PlaceOrder(context.Background(), username, PlaceOrderRequest{
		ShippingAddress: "1 Main St",
		Items:           lines,
	})
	require.NoError(t, err)
	return order
}

func line(p *types.Product, qty int) types.CartLine {
	return types.CartLine{ProductID: p.ID, Quantity: qty}
}
