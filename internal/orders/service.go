package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/dropship-mcp/internal/events"
	"github.com/dshills/dropship-mcp/internal/inventory"
	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// Service places, ships and lists orders
type Service struct {
	store     storage.Storage
	ledger    *inventory.Ledger
	publisher events.Publisher
	logger    *zap.Logger

	now     func() time.Time
	newTxID func() string
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for order, payment and shipping
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an order service. A nil publisher disables events.
func NewService(store storage.Storage, ledger *inventory.Ledger, publisher events.Publisher, logger *zap.Logger, opts ...Option) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newTxID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish announces a committed change. Delivery failures are logged and
// never undo the change.
func (s *Service) publish(ctx context.Context, eventType string, order *types.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("event", eventType),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}

func lookupUser(ctx context.Context, store storage.Store, username string) (*types.User, error) {
	user, err := store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrUserNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}
	return user, nil
}

func lookupOrder(ctx context.Context, store storage.Store, orderID int64) (*types.Order, error) {
	order, err := store.GetOrder(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", types.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	return order, nil
}
