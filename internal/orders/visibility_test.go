package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dropship-mcp/pkg/types"
)

func caller(name string, roles ...types.Role) types.Caller {
	return types.Caller{Username: name, Roles: roles}
}

func orderIDs(orders []*types.Order) []int64 {
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

func TestResolveScope(t *testing.T) {
	assert.Equal(t, ScopeAdmin, ResolveScope([]types.Role{types.RoleSupplier, types.RoleAdmin}))
	assert.Equal(t, ScopeSupplier, ResolveScope([]types.Role{types.RoleSupplier}))
	assert.Equal(t, ScopeCustomer, ResolveScope([]types.Role{types.RoleCustomer}))
	assert.Equal(t, ScopeCustomer, ResolveScope([]types.Role{types.RoleStaff}))
	assert.Equal(t, ScopeCustomer, ResolveScope(nil))
	assert.Equal(t, "supplier", ScopeSupplier.String())
}

func TestListOrders_RoleVisibility(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 20)
	s.stock(t, s.gadget, 20)
	ctx := context.Background()

	aliceWidget := s.place(t, "alice", line(s.widget, 1))
	bobBoth := s.place(t, "bob", line(s.widget, 1), line(s.gadget, 1))
	carolGadget := s.place(t, "carol", line(s.gadget, 2))

	tests := []struct {
		name   string
		caller types.Caller
		want   []int64
	}{
		{"admin sees all", caller("admin", types.RoleAdmin), []int64{carolGadget.ID, bobBoth.ID, aliceWidget.ID}},
		{"supplier1 sees widget orders", caller("supplier1", types.RoleSupplier), []int64{bobBoth.ID, aliceWidget.ID}},
		{"supplier2 sees gadget orders", caller("supplier2", types.RoleSupplier), []int64{carolGadget.ID, bobBoth.ID}},
		{"alice sees her own", caller("alice", types.RoleCustomer), []int64{aliceWidget.ID}},
		{"bob sees his own", caller("bob", types.RoleCustomer), []int64{bobBoth.ID}},
		{"staff falls back to own orders", caller("staff", types.RoleStaff), []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.svc.ListOrders(ctx, tt.caller)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, orderIDs(got))
		})
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 20)
	ctx := context.Background()

	first := s.place(t, "alice", line(s.widget, 1))
	second := s.place(t, "alice", line(s.widget, 1))

	got, err := s.svc.ListOrders(ctx, caller("alice", types.RoleCustomer))
	require.NoError(t, err)
	assert.Equal(t, []int64{second.ID, first.ID}, orderIDs(got))
}

func TestListOrders_SupplierSeesDistinctOrders(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 20)
	ctx := context.Background()

	order := s.place(t, "alice", line(s.widget, 1), line(s.widget, 2))

	got, err := s.svc.ListOrders(ctx, caller("supplier1", types.RoleSupplier))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, order.ID, got[0].ID)

	// Hydrated down to the supplier
	require.Len(t, got[0].Items, 2)
	assert.Equal(t, "MegaCorp Supplies", got[0].Items[0].Product.Supplier.BusinessName)
	assert.Equal(t, "alice", got[0].Customer.Username)
}

func TestListOrders_Errors(t *testing.T) {
	s := setupShop(t)
	ctx := context.Background()

	_, err := s.svc.ListOrders(ctx, caller("newsupplier", types.RoleSupplier))
	assert.ErrorIs(t, err, types.ErrSupplierProfileNotFound)

	_, err = s.svc.ListOrders(ctx, caller("ghost", types.RoleCustomer))
	assert.ErrorIs(t, err, types.ErrUserNotFound)

	// Admin scope needs no lookup
	got, err := s.svc.ListOrders(ctx, caller("ghost", types.RoleAdmin))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetOrder_Scoped(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)
	ctx := context.Background()

	order := s.place(t, "alice", line(s.widget, 1))

	got, err := s.svc.GetOrder(ctx, caller("alice", types.RoleCustomer), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = s.svc.GetOrder(ctx, caller("bob", types.RoleCustomer), order.ID)
	assert.ErrorIs(t, err, types.ErrOrderNotFound)

	_, err = s.svc.GetOrder(ctx, caller("supplier1", types.RoleSupplier), order.ID)
	assert.NoError(t, err)

	_, err = s.svc.GetOrder(ctx, caller("supplier2", types.RoleSupplier), order.ID)
	assert.ErrorIs(t, err, types.ErrOrderNotFound)

	_, err = s.svc.GetOrder(ctx, caller("admin", types.RoleAdmin), order.ID)
	assert.NoError(t, err)

	_, err = s.svc.GetOrder(ctx, caller("admin", types.RoleAdmin), 999)
	assert.ErrorIs(t, err, types.ErrOrderNotFound)
}
