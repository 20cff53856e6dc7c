// Package catalog manages categories and supplier-owned products.
//
// Products belong to the supplier profile of the user that created them.
// Only that supplier, or an administrator, may change or remove a product.
// Removal is refused once a product appears in any order, so order history
// keeps resolving.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// Service is the catalog
type Service struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewService creates a catalog service
func NewService(store storage.Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// CategoryRequest carries category fields
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r CategoryRequest) normalize() (CategoryRequest, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return r, types.Invalidf("category name is required")
	}
	return r, nil
}

// CreateCategory adds a category with a unique name
func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*types.Category, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	category := &types.Category{Name: req.Name, Description: req.Description}
	err = s.store.CreateCategory(ctx, category)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, fmt.Errorf("%w: %s", types.ErrDuplicateCategory, req.Name)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created", zap.Int64("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// UpdateCategory renames or re-describes a category
func (s *Service) UpdateCategory(ctx context.Context, categoryID int64, req CategoryRequest) (*types.Category, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	var category *types.Category
	err = s.store.RunAtomically(ctx, func(tx storage.Store) error {
		var err error
		if category, err = getCategory(ctx, tx, categoryID); err != nil {
			return err
		}

		existing, err := tx.GetCategoryByName(ctx, req.Name)
		switch {
		case err == nil && existing.ID != categoryID:
			return fmt.Errorf("%w: %s", types.ErrDuplicateCategory, req.Name)
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return err
		}

		category.Name = req.Name
		category.Description = req.Description
		return tx.UpdateCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category updated", zap.Int64("category_id", categoryID))
	return category, nil
}

// DeleteCategory removes a category no product uses
func (s *Service) DeleteCategory(ctx context.Context, categoryID int64) error {
	return s.store.RunAtomically(ctx, func(tx storage.Store) error {
		if _, err := getCategory(ctx, tx, categoryID); err != nil {
			return err
		}
		inUse, err := tx.CategoryHasProducts(ctx, categoryID)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: id %d", types.ErrCategoryInUse, categoryID)
		}
		return tx.DeleteCategory(ctx, categoryID)
	})
}

// ListCategories returns every category by name
func (s *Service) ListCategories(ctx context.Context) ([]*types.Category, error) {
	return s.store.ListCategories(ctx)
}

func getCategory(ctx context.Context, store storage.Store, categoryID int64) (*types.Category, error) {
	category, err := store.GetCategory(ctx, categoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", types.ErrCategoryNotFound, categoryID)
	}
	return category, err
}

// ProductRequest carries product fields
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"category_id"`
}

func (r ProductRequest) apply(p *types.Product) {
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.ImageURL = r.ImageURL
	p.Price = r.Price
	p.CategoryID = r.CategoryID
}

// CreateProduct lists a new product under the caller's supplier profile with
// an empty stock counter.
func (s *Service) CreateProduct(ctx context.Context, caller types.Caller, req ProductRequest) (*types.Product, error) {
	product := &types.Product{}
	req.apply(product)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	err := s.store.RunAtomically(ctx, func(tx storage.Store) error {
		if _, err := getCategory(ctx, tx, req.CategoryID); err != nil {
			return err
		}
		supplier, err := supplierOf(ctx, tx, caller.Username)
		if err != nil {
			return err
		}
		product.SupplierID = supplier.ID

		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		_, err = tx.EnsureInventory(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("supplier_id", product.SupplierID),
		zap.String("username", caller.Username))
	return product, nil
}

// UpdateProduct changes a product the caller owns. The price change applies to
// future orders only.
func (s *Service) UpdateProduct(ctx context.Context, caller types.Caller, productID int64, req ProductRequest) (*types.Product, error) {
	var product *types.Product
	err := s.store.RunAtomically(ctx, func(tx storage.Store) error {
		var err error
		if product, err = s.ownedProduct(ctx, tx, caller, productID); err != nil {
			return err
		}

		req.apply(product)
		if err := product.Validate(); err != nil {
			return err
		}
		if _, err := getCategory(ctx, tx, product.CategoryID); err != nil {
			return err
		}
		return tx.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.Int64("product_id", productID), zap.String("username", caller.Username))
	return product, nil
}

// DeleteProduct removes a product the caller owns and that was never ordered
func (s *Service) DeleteProduct(ctx context.Context, caller types.Caller, productID int64) error {
	err := s.store.RunAtomically(ctx, func(tx storage.Store) error {
		if _, err := s.ownedProduct(ctx, tx, caller, productID); err != nil {
			return err
		}
		ordered, err := tx.ProductHasOrders(ctx, productID)
		if err != nil {
			return err
		}
		if ordered {
			return fmt.Errorf("%w: id %d", types.ErrProductInUse, productID)
		}
		return tx.DeleteProduct(ctx, productID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.Int64("product_id", productID), zap.String("username", caller.Username))
	return nil
}

// GetProduct returns one product
func (s *Service) GetProduct(ctx context.Context, productID int64) (*types.Product, error) {
	return getProduct(ctx, s.store, productID)
}

// ListProducts returns the whole catalog
func (s *Service) ListProducts(ctx context.Context) ([]*types.Product, error) {
	return s.store.ListProducts(ctx)
}

// ListSupplierProducts returns the products owned by the caller's supplier
// profile.
func (s *Service) ListSupplierProducts(ctx context.Context, caller types.Caller) ([]*types.Product, error) {
	supplier, err := supplierOf(ctx, s.store, caller.Username)
	if err != nil {
		return nil, err
	}
	return s.store.ListProductsBySupplier(ctx, supplier.ID)
}

// ownedProduct loads the product and checks the caller may change it
func (s *Service) ownedProduct(ctx context.Context, store storage.Store, caller types.Caller, productID int64) (*types.Product, error) {
	product, err := getProduct(ctx, store, productID)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return product, nil
	}

	supplier, err := supplierOf(ctx, store, caller.Username)
	if errors.Is(err, types.ErrSupplierProfileNotFound) {
		return nil, fmt.Errorf("%w: product %d", types.ErrNotProductOwner, productID)
	}
	if err != nil {
		return nil, err
	}
	if product.SupplierID != supplier.ID {
		s.logger.Debug("ownership check failed",
			zap.Int64("product_id", productID),
			zap.String("username", caller.Username))
		return nil, fmt.Errorf("%w: product %d", types.ErrNotProductOwner, productID)
	}
	return product, nil
}

func getProduct(ctx context.Context, store storage.Store, productID int64) (*types.Product, error) {
	product, err := store.GetProduct(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", types.ErrProductNotFound, productID)
	}
	return product, err
}

func supplierOf(ctx context.Context, store storage.Store, username string) (*types.Supplier, error) {
	user, err := store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrUserNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	supplier, err := store.GetSupplierByUser(ctx, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrSupplierProfileNotFound, username)
	}
	return supplier, err
}
