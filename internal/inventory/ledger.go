// Package inventory is the single source of truth for per-product stock.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// Ledger reads and adjusts stock counters
type Ledger struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewLedger creates a ledger over store
func NewLedger(store storage.Storage, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: store, logger: logger}
}

// Get returns the product's stock. A product that has never been stocked
// reports a zero record without one being written.
func (l *Ledger) Get(ctx context.Context, productID int64) (*types.Inventory, error) {
	if _, err := getProduct(ctx, l.store, productID); err != nil {
		return nil, err
	}

	inv, err := l.store.GetInventory(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return &types.Inventory{ProductID: productID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory for product %d: %w", productID, err)
	}

	l.logger.Debug("inventory read", zap.Int64("product_id", productID), zap.Int("quantity", inv.Quantity))
	return inv, nil
}

// Adjust applies delta to the product's stock. It fails with
// types.ErrNegativeStock when the result would drop below zero, whatever the
// caller checked beforehand.
func (l *Ledger) Adjust(ctx context.Context, productID int64, delta int) (*types.Inventory, error) {
	var inv *types.Inventory
	err := l.store.RunAtomically(ctx, func(tx storage.Store) error {
		if _, err := getProduct(ctx, tx, productID); err != nil {
			return err
		}
		if _, err := tx.EnsureInventory(ctx, productID); err != nil {
			return err
		}

		var err error
		inv, err = tx.AdjustInventory(ctx, productID, delta)
		if errors.Is(err, storage.ErrStockUnderflow) {
			return fmt.Errorf("product %d by %d: %w", productID, delta, types.ErrNegativeStock)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("inventory adjusted",
		zap.Int64("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("quantity", inv.Quantity))
	return inv, nil
}

// Set overwrites the product's stock with an absolute quantity
func (l *Ledger) Set(ctx context.Context, productID int64, quantity int) (*types.Inventory, error) {
	if quantity < 0 {
		return nil, types.Invalidf("quantity must be >= 0, got %d", quantity)
	}

	var inv *types.Inventory
	err := l.store.RunAtomically(ctx, func(tx storage.Store) error {
		if _, err := getProduct(ctx, tx, productID); err != nil {
			return err
		}
		var err error
		inv, err = tx.SetInventory(ctx, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("inventory set", zap.Int64("product_id", productID), zap.Int("quantity", quantity))
	return inv, nil
}

// Reserve takes quantity units of product out of stock inside the caller's
// transaction. The check and the decrement are one conditional write, so a
// concurrent reservation cannot slip between them.
func (l *Ledger) Reserve(ctx context.Context, tx storage.Store, product *types.Product, quantity int) (*types.Inventory, error) {
	if quantity <= 0 {
		return nil, types.Invalidf("quantity for product %d must be > 0, got %d", product.ID, quantity)
	}

	inv, err := tx.EnsureInventory(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize inventory for product %d: %w", product.ID, err)
	}
	if inv.Quantity < quantity {
		return nil, insufficient(product, inv.Quantity, quantity)
	}

	updated, err := tx.AdjustInventory(ctx, product.ID, -quantity)
	if errors.Is(err, storage.ErrStockUnderflow) {
		current, getErr := tx.GetInventory(ctx, product.ID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, insufficient(product, current.Quantity, quantity)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func insufficient(product *types.Product, available, requested int) error {
	return &types.InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   available,
		Requested:   requested,
	}
}

func getProduct(ctx context.Context, store storage.Store, productID int64) (*types.Product, error) {
	product, err := store.GetProduct(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", types.ErrProductNotFound, productID)
	}
	return product, err
}
