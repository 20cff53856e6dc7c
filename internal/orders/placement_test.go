package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/dropship-mcp/internal/events"
	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

func TestPlaceOrder(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)
	s.stock(t, s.gadget, 10)

	order := s.place(t, "alice", line(s.widget, 2), line(s.gadget, 3))

	assert.Greater(t, order.ID, int64(0))
	assert.Equal(t, types.OrderStatusPending, order.Status)
	assert.Equal(t, "alice", order.Customer.Username)
	assert.Equal(t, "1 Main St", order.ShippingAddress)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("27.50")), "total %s", order.Total)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Widget", order.Items[0].Product.Name)
	assert.Equal(t, "MegaCorp Supplies", order.Items[0].Product.Supplier.BusinessName)
	assert.Equal(t, "Aries Ltd.", order.Items[1].Product.Supplier.BusinessName)

	assert.Equal(t, types.PaymentStatusSuccess, order.Payment.Status)
	assert.Equal(t, types.PaymentMethodSimulated, order.Payment.Method)
	assert.True(t, order.Payment.Amount.Equal(order.Total))
	assert.Len(t, order.Payment.TransactionID, 36)
	assert.Nil(t, order.Shipping)

	assert.Equal(t, 3, s.quantity(t, s.widget))
	assert.Equal(t, 7, s.quantity(t, s.gadget))

	published := s.recorder.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.OrderPlaced, published[0].Type)
	assert.Equal(t, order.ID, published[0].OrderID)
}

func TestPlaceOrder_UniqueTransactionIDs(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)

	first := s.place(t, "alice", line(s.widget, 1))
	second := s.place(t, "alice", line(s.widget, 1))
	assert.NotEqual(t, first.Payment.TransactionID, second.Payment.TransactionID)
}

// Stock 5; buying 3 leaves 2; buying 3 more fails reporting 2 available.
func TestPlaceOrder_InsufficientStockScenario(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)

	s.place(t, "alice", line(s.widget, 3))
	assert.Equal(t, 2, s.quantity(t, s.widget))

	_, err := s.svc.PlaceOrder(context.Background(), "bob", PlaceOrderRequest{
		ShippingAddress: "2 Side St",
		Items:           []types.CartLine{line(s.widget, 3)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInsufficientStock)
	assert.ErrorIs(t, err, types.ErrConflict)

	var stockErr *types.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, s.widget.ID, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Contains(t, err.Error(), "Widget")

	assert.Equal(t, 2, s.quantity(t, s.widget))
}

func TestPlaceOrder_FailedCartIsAtomic(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)
	s.stock(t, s.gadget, 1)

	// The first line fits, the second does not
	_, err := s.svc.PlaceOrder(context.Background(), "alice", PlaceOrderRequest{
		ShippingAddress: "1 Main St",
		Items:           []types.CartLine{line(s.widget, 2), line(s.gadget, 2)},
	})
	assert.ErrorIs(t, err, types.ErrInsufficientStock)

	assert.Equal(t, 5, s.quantity(t, s.widget))
	assert.Equal(t, 1, s.quantity(t, s.gadget))

	all, err := s.store.ListOrders(context.Background(), storage.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, s.recorder.Events())
}

func TestPlaceOrder_RepeatedLinesShareStock(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 3)

	_, err := s.svc.PlaceOrder(context.Background(), "alice", PlaceOrderRequest{
		ShippingAddress: "1 Main St",
		Items:           []types.CartLine{line(s.widget, 2), line(s.widget, 2)},
	})
	var stockErr *types.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, s.quantity(t, s.widget))

	order := s.place(t, "alice", line(s.widget, 1), line(s.widget, 2))
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 0, s.quantity(t, s.widget))
}

func TestPlaceOrder_UnstockedProduct(t *testing.T) {
	s := setupShop(t)

	_, err := s.svc.PlaceOrder(context.Background(), "alice", PlaceOrderRequest{
		ShippingAddress: "1 Main St",
		Items:           []types.CartLine{line(s.widget, 1)},
	})
	var stockErr *types.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 0, stockErr.Available)
}

func TestPlaceOrder_Errors(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		req      PlaceOrderRequest
		want     error
	}{
		{
			name:     "unknown user",
			username: "mallory",
			req:      PlaceOrderRequest{ShippingAddress: "x", Items: []types.CartLine{line(s.widget, 1)}},
			want:     types.ErrUserNotFound,
		},
		{
			name:     "unknown product",
			username: "alice",
			req:      PlaceOrderRequest{ShippingAddress: "x", Items: []types.CartLine{{ProductID: 999, Quantity: 1}}},
			want:     types.ErrProductNotFound,
		},
		{
			name:     "empty cart",
			username: "alice",
			req:      PlaceOrderRequest{ShippingAddress: "x"},
			want:     types.ErrInvalidArgument,
		},
		{
			name:     "zero quantity",
			username: "alice",
			req:      PlaceOrderRequest{ShippingAddress: "x", Items: []types.CartLine{line(s.widget, 0)}},
			want:     types.ErrInvalidArgument,
		},
		{
			name:     "blank address",
			username: "alice",
			req:      PlaceOrderRequest{ShippingAddress: "  ", Items: []types.CartLine{line(s.widget, 1)}},
			want:     types.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.svc.PlaceOrder(ctx, tt.username, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 5, s.quantity(t, s.widget))
}

func TestPlaceOrder_DisabledUser(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)
	ctx := context.Background()

	alice, err := s.store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.store.SetUserEnabled(ctx, alice.ID, false))

	_, err = s.svc.PlaceOrder(ctx, "alice", PlaceOrderRequest{
		ShippingAddress: "1 Main St",
		Items:           []types.CartLine{line(s.widget, 1)},
	})
	assert.ErrorIs(t, err, types.ErrUserDisabled)
	assert.ErrorIs(t, err, types.ErrForbidden)
}

func TestPlaceOrder_PriceSnapshot(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)
	ctx := context.Background()

	order := s.place(t, "alice", line(s.widget, 2))

	s.widget.Price = decimal.RequireFromString("99.99")
	require.NoError(t, s.store.UpdateProduct(ctx, s.widget))

	got, err := s.svc.GetOrder(ctx, types.Caller{Username: "alice", Roles: []types.Role{types.RoleCustomer}}, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].PriceAtPurchase.Equal(decimal.NewFromInt(10)))
	assert.True(t, got.Total.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Payment.Amount.Equal(decimal.NewFromInt(20)))
}

func TestPlaceOrder_ExactDecimalTotals(t *testing.T) {
	s := setupShop(t)
	ctx := context.Background()

	// 0.1 is not representable in binary floating point
	s.gadget.Price = decimal.RequireFromString("0.10")
	require.NoError(t, s.store.UpdateProduct(ctx, s.gadget))
	s.stock(t, s.gadget, 30)

	order := s.place(t, "alice", line(s.gadget, 3))
	assert.Equal(t, "0.3", order.Total.String())
}

func TestPlaceOrder_PublishFailureDoesNotFail(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 5)
	s.recorder.Err = errors.New("broker down")

	order := s.place(t, "alice", line(s.widget, 1))
	assert.Greater(t, order.ID, int64(0))
	assert.Equal(t, 4, s.quantity(t, s.widget))
}

func TestPlaceOrder_ConcurrentNeverOversells(t *testing.T) {
	s := setupShop(t)
	s.stock(t, s.widget, 10)
	ctx := context.Background()

	const buyers = 25
	results := make([]error, buyers)

	var g errgroup.Group
	for i := 0; i < buyers; i++ {
		i := i
		username := []string{"alice", "bob", "carol"}[i%3]
		g.Go(func() error {
			_, results[i] = s.svc.PlaceOrder(ctx, username, PlaceOrderRequest{
				ShippingAddress: "1 Main St",
				Items:           []types.CartLine{line(s.widget, 1)},
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, types.ErrInsufficientStock)
	}
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, s.quantity(t, s.widget))

	all, err := s.store.ListOrders(ctx, storage.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
