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

// ShipOrderRequest carries the carrier's tracking details
type ShipOrderRequest struct {
	TrackingNumber  string `json:"tracking_number"`
	ShippingCompany string `json:"shipping_company"`
}

// Validate checks that both tracking fields are present
func (r ShipOrderRequest) Validate() error {
	if strings.TrimSpace(r.TrackingNumber) == "" {
		return types.Invalidf("tracking number is required")
	}
	if strings.TrimSpace(r.ShippingCompany) == "" {
		return types.Invalidf("shipping company is required")
	}
	return nil
}

// ShipOrder marks a pending order as shipped and attaches its tracking
// record. Shipping is a one-time transition; a second call fails with
// types.ErrAlreadyShipped.
func (s *Service) ShipOrder(ctx context.Context, orderID int64, req ShipOrderRequest) (*types.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var shipped *types.Order
	err := s.store.RunAtomically(ctx, func(tx storage.Store) error {
		order, err := lookupOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.IsShipped() {
			return fmt.Errorf("%w: id %d", types.ErrAlreadyShipped, orderID)
		}

		err = tx.MarkOrderShipped(ctx, orderID)
		switch {
		case errors.Is(err, storage.ErrStatusChanged):
			return fmt.Errorf("%w: id %d", types.ErrAlreadyShipped, orderID)
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%w: id %d", types.ErrOrderNotFound, orderID)
		case err != nil:
			return err
		}

		shipping := &types.Shipping{
			TrackingNumber:  strings.TrimSpace(req.TrackingNumber),
			ShippingCompany: strings.TrimSpace(req.ShippingCompany),
			ShippedAt:       s.now(),
		}
		err = tx.CreateShipping(ctx, orderID, shipping)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("%w: id %d", types.ErrAlreadyShipped, orderID)
		}
		if err != nil {
			return err
		}

		shipped, err = lookupOrder(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order shipped",
		zap.Int64("order_id", orderID),
		zap.String("tracking_number", shipped.Shipping.TrackingNumber),
		zap.String("shipping_company", shipped.Shipping.ShippingCompany))

	s.publish(ctx, events.OrderShipped, shipped)
	return shipped, nil
}
