package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

func setupLedger(t *testing.T) (*Ledger, *storage.SQLiteStorage, *types.Product) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	owner := &types.User{Username: "supplier1", Email: "s1@example.com", PasswordHash: "x", Role: types.RoleSupplier, Enabled: true}
	require.NoError(t, store.CreateUser(ctx, owner))
	supplier := &types.Supplier{UserID: owner.ID, BusinessName: "MegaCorp Supplies"}
	require.NoError(t, store.CreateSupplier(ctx, supplier))
	category := &types.Category{Name: "Electronics"}
	require.NoError(t, store.CreateCategory(ctx, category))
	product := &types.Product{Name: "Widget", Price: decimal.NewFromInt(10), CategoryID: category.ID, SupplierID: supplier.ID}
	require.NoError(t, store.CreateProduct(ctx, product))

	return NewLedger(store, zaptest.NewLogger(t)), store, product
}

func TestGet_DefaultsToZero(t *testing.T) {
	ledger, store, product := setupLedger(t)
	ctx := context.Background()

	inv, err := ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Quantity)

	// Reading does not materialize a row
	_, err = store.GetInventory(ctx, product.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGet_UnknownProduct(t *testing.T) {
	ledger, _, _ := setupLedger(t)

	_, err := ledger.Get(context.Background(), 999)
	assert.ErrorIs(t, err, types.ErrProductNotFound)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAdjust(t *testing.T) {
	ledger, _, product := setupLedger(t)
	ctx := context.Background()

	inv, err := ledger.Adjust(ctx, product.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Quantity)

	inv, err = ledger.Adjust(ctx, product.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Quantity)

	_, err = ledger.Adjust(ctx, product.ID, -1)
	assert.ErrorIs(t, err, types.ErrNegativeStock)
	assert.ErrorIs(t, err, types.ErrConflict)

	inv, err = ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Quantity)

	_, err = ledger.Adjust(ctx, 999, 1)
	assert.ErrorIs(t, err, types.ErrProductNotFound)
}

func TestSet(t *testing.T) {
	ledger, _, product := setupLedger(t)
	ctx := context.Background()

	inv, err := ledger.Set(ctx, product.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, inv.Quantity)

	inv, err = ledger.Set(ctx, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Quantity)

	_, err = ledger.Set(ctx, product.ID, -1)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = ledger.Set(ctx, 999, 1)
	assert.ErrorIs(t, err, types.ErrProductNotFound)
}

func TestReserve(t *testing.T) {
	ledger, store, product := setupLedger(t)
	ctx := context.Background()

	_, err := ledger.Set(ctx, product.ID, 5)
	require.NoError(t, err)

	err = store.RunAtomically(ctx, func(tx storage.Store) error {
		inv, err := ledger.Reserve(ctx, tx, product, 3)
		if err != nil {
			return err
		}
		assert.Equal(t, 2, inv.Quantity)
		return nil
	})
	require.NoError(t, err)

	err = store.RunAtomically(ctx, func(tx storage.Store) error {
		_, err := ledger.Reserve(ctx, tx, product, 3)
		return err
	})
	require.Error(t, err)

	var stockErr *types.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, "Widget", stockErr.ProductName)
	assert.ErrorIs(t, err, types.ErrInsufficientStock)

	inv, err := ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Quantity)
}

func TestReserve_MaterializesAtZero(t *testing.T) {
	ledger, store, product := setupLedger(t)
	ctx := context.Background()

	err := store.RunAtomically(ctx, func(tx storage.Store) error {
		_, err := ledger.Reserve(ctx, tx, product, 1)
		return err
	})
	assert.ErrorIs(t, err, types.ErrInsufficientStock)
}

func TestReserve_RejectsNonPositive(t *testing.T) {
	ledger, store, product := setupLedger(t)
	ctx := context.Background()

	err := store.RunAtomically(ctx, func(tx storage.Store) error {
		_, err := ledger.Reserve(ctx, tx, product, 0)
		return err
	})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
