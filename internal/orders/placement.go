package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/dropship-mcp/internal/events"
	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// PlaceOrderRequest is a cart submitted for checkout
type PlaceOrderRequest struct {
	ShippingAddress string           `json:"shipping_address"`
	Items           []types.CartLine `json:"items"`
}

// Validate checks the request shape before any stock is touched
func (r PlaceOrderRequest) Validate() error {
	if strings.TrimSpace(r.ShippingAddress) == "" {
		return types.Invalidf("shipping address is required")
	}
	if len(r.Items) == 0 {
		return types.Invalidf("cart is empty")
	}
	for i, line := range r.Items {
		if line.ProductID <= 0 {
			return types.Invalidf("item %d: product id must be positive", i)
		}
		if line.Quantity <= 0 {
			return types.Invalidf("item %d: quantity must be positive, got %d", i, line.Quantity)
		}
	}
	return nil
}

// PlaceOrder reserves stock for every cart line and records the order with
// its payment, all or nothing.
func (s *Service) PlaceOrder(ctx context.Context, username string, req PlaceOrderRequest) (*types.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var placed *types.Order
	err := s.store.RunAtomically(ctx, func(tx storage.Store) error {
		customer, err := lookupUser(ctx, tx, username)
		if err != nil {
			return err
		}
		if !customer.Enabled {
			return fmt.Errorf("%w: %s", types.ErrUserDisabled, username)
		}

		now := s.now()
		order := types.NewOrder(customer, strings.TrimSpace(req.ShippingAddress), now)

		for _, line := range req.Items {
			product, err := tx.GetProduct(ctx, line.ProductID)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: id %d", types.ErrProductNotFound, line.ProductID)
			}
			if err != nil {
				return fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
			}

			if _, err := s.ledger.Reserve(ctx, tx, product, line.Quantity); err != nil {
				return err
			}
			order.AddItem(product, line.Quantity)
		}

		order.Pay(s.newTxID(), now)

		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to persist order: %w", err)
		}

		placed, err = lookupOrder(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		s.logger.Debug("order rejected", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.String("username", username),
		zap.Int("items", len(placed.Items)),
		zap.String("total", placed.Total.StringFixed(2)))

	s.publish(ctx, events.OrderPlaced, placed)
	return placed, nil
}
