package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/dshills/dropship-mcp/internal/accounts"
	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

func setupStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSeed(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	opts := Options{Password: "password123", Cost: bcrypt.MinCost}

	result, err := Seed(ctx, store, opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 2, Users: 3, Suppliers: 2}, result)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	supplier1, err := store.GetUserByUsername(ctx, "supplier1")
	require.NoError(t, err)
	assert.Equal(t, types.RoleSupplier, supplier1.Role)
	profile, err := store.GetSupplierByUser(ctx, supplier1.ID)
	require.NoError(t, err)
	assert.Equal(t, "MegaCorp Supplies", profile.BusinessName)
	assert.Equal(t, "555-1234", profile.ContactPhone)

	admin, err := store.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, admin.Role)
	_, err = store.GetSupplierByUser(ctx, admin.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Seeded passwords verify
	svc := accounts.NewService(store, nil)
	_, err = svc.Authenticate(ctx, "supplier2", "password123")
	assert.NoError(t, err)
}

func TestSeed_Idempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	opts := Options{Password: "password123", Cost: bcrypt.MinCost}

	_, err := Seed(ctx, store, opts, nil)
	require.NoError(t, err)

	result, err := Seed(ctx, store, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestSeed_RequiresPassword(t *testing.T) {
	store := setupStore(t)

	_, err := Seed(context.Background(), store, Options{}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
