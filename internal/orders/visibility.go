package orders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// Scope is the slice of orders a caller may see
type Scope int

const (
	ScopeCustomer Scope = iota // own orders
	ScopeSupplier              // orders containing the supplier's products
	ScopeAdmin                 // every order
)

func (s Scope) String() string {
	switch s {
	case ScopeAdmin:
		return "admin"
	case ScopeSupplier:
		return "supplier"
	default:
		return "customer"
	}
}

// ResolveScope picks the widest scope the roles grant. ADMIN wins over
// SUPPLIER; any other role set is treated as a customer.
func ResolveScope(roles []types.Role) Scope {
	switch {
	case types.HasRole(roles, types.RoleAdmin):
		return ScopeAdmin
	case types.HasRole(roles, types.RoleSupplier):
		return ScopeSupplier
	default:
		return ScopeCustomer
	}
}

// ListOrders returns the orders visible to caller, newest first, with items,
// products, suppliers, payment and shipping loaded.
func (s *Service) ListOrders(ctx context.Context, caller types.Caller) ([]*types.Order, error) {
	filter, err := s.filterFor(ctx, caller)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	s.logger.Debug("orders listed",
		zap.String("username", caller.Username),
		zap.Stringer("scope", ResolveScope(caller.Roles)),
		zap.Int("count", len(orders)))
	return orders, nil
}

// GetOrder returns one order if it falls inside the caller's scope. An order
// outside the scope is reported as not found.
func (s *Service) GetOrder(ctx context.Context, caller types.Caller, orderID int64) (*types.Order, error) {
	filter, err := s.filterFor(ctx, caller)
	if err != nil {
		return nil, err
	}

	order, err := lookupOrder(ctx, s.store, orderID)
	if err != nil {
		return nil, err
	}
	if !visible(filter, order) {
		return nil, fmt.Errorf("%w: id %d", types.ErrOrderNotFound, orderID)
	}
	return order, nil
}

func (s *Service) filterFor(ctx context.Context, caller types.Caller) (storage.OrderFilter, error) {
	switch ResolveScope(caller.Roles) {
	case ScopeAdmin:
		return s.adminFilter()
	case ScopeSupplier:
		return s.supplierFilter(ctx, caller)
	default:
		return s.customerFilter(ctx, caller)
	}
}

func (s *Service) adminFilter() (storage.OrderFilter, error) {
	return storage.OrderFilter{}, nil
}

func (s *Service) supplierFilter(ctx context.Context, caller types.Caller) (storage.OrderFilter, error) {
	user, err := lookupUser(ctx, s.store, caller.Username)
	if err != nil {
		return storage.OrderFilter{}, err
	}
	supplier, err := s.store.GetSupplierByUser(ctx, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.OrderFilter{}, fmt.Errorf("%w: %s", types.ErrSupplierProfileNotFound, caller.Username)
	}
	if err != nil {
		return storage.OrderFilter{}, err
	}
	return storage.OrderFilter{SupplierID: supplier.ID}, nil
}

func (s *Service) customerFilter(ctx context.Context, caller types.Caller) (storage.OrderFilter, error) {
	user, err := lookupUser(ctx, s.store, caller.Username)
	if err != nil {
		return storage.OrderFilter{}, err
	}
	return storage.OrderFilter{CustomerID: user.ID}, nil
}

func visible(filter storage.OrderFilter, order *types.Order) bool {
	if filter.CustomerID != 0 && order.Customer.ID != filter.CustomerID {
		return false
	}
	if filter.SupplierID != 0 && !order.HasSupplier(filter.SupplierID) {
		return false
	}
	return true
}
