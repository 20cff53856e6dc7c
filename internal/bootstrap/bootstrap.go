// Package bootstrap seeds a fresh database with the categories and staff
// accounts the storefront starts with. Seeding is idempotent: existing rows
// are left untouched, so it runs on every start.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dshills/dropship-mcp/internal/accounts"
	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// Options configures seeding
type Options struct {
	Password string // Password given to every seeded account
	Cost     int    // bcrypt cost; zero means bcrypt.DefaultCost
}

// seedUser is an account to create, with an optional supplier profile
type seedUser struct {
	Username string
	Email    string
	Role     types.Role
	Business string
	Phone    string
}

var seedCategories = []types.Category{
	{Name: "Electronics", Description: "Gadgets and devices"},
	{Name: "Household", Description: "Items for the home"},
}

var seedUsers = []seedUser{
	{Username: "supplier1", Email: "supplier1@example.com", Role: types.RoleSupplier, Business: "MegaCorp Supplies", Phone: "555-1234"},
	{Username: "supplier2", Email: "supplier2@example.com", Role: types.RoleSupplier, Business: "Aries Ltd.", Phone: "074-7474"},
	{Username: "admin", Email: "admin@example.com", Role: types.RoleAdmin},
}

// Result counts what a run created
type Result struct {
	Categories int
	Users      int
	Suppliers  int
}

// Seed creates whatever part of the seed data is missing
func Seed(ctx context.Context, store storage.Storage, opts Options, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Password == "" {
		return Result{}, types.Invalidf("seed password is required")
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	var result Result
	err := store.RunAtomically(ctx, func(tx storage.Store) error {
		result = Result{}

		for _, c := range seedCategories {
			created, err := ensureCategory(ctx, tx, c)
			if err != nil {
				return err
			}
			if created {
				result.Categories++
			}
		}

		for _, u := range seedUsers {
			user, created, err := ensureUser(ctx, tx, u, opts.Password, cost)
			if err != nil {
				return err
			}
			if created {
				result.Users++
			}
			if u.Business == "" {
				continue
			}
			created, err = ensureSupplier(ctx, tx, user, u)
			if err != nil {
				return err
			}
			if created {
				result.Suppliers++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("seeding failed: %w", err)
	}

	logger.Info("seed data ensured",
		zap.Int("categories_created", result.Categories),
		zap.Int("users_created", result.Users),
		zap.Int("suppliers_created", result.Suppliers))
	return result, nil
}

func ensureCategory(ctx context.Context, tx storage.Store, c types.Category) (bool, error) {
	_, err := tx.GetCategoryByName(ctx, c.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	return true, tx.CreateCategory(ctx, &c)
}

func ensureUser(ctx context.Context, tx storage.Store, u seedUser, password string, cost int) (*types.User, bool, error) {
	user, err := tx.GetUserByUsername(ctx, u.Username)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	hash, err := accounts.HashPassword(password, cost)
	if err != nil {
		return nil, false, err
	}
	user = &types.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: hash,
		Role:         u.Role,
		Enabled:      true,
	}
	if err := tx.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func ensureSupplier(ctx context.Context, tx storage.Store, user *types.User, u seedUser) (bool, error) {
	_, err := tx.GetSupplierByUser(ctx, user.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	return true, tx.CreateSupplier(ctx, &types.Supplier{
		UserID:       user.ID,
		BusinessName: u.Business,
		ContactPhone: u.Phone,
	})
}
