package types

import (
	"errors"
	"fmt"
)

// Error categories. Every domain error wraps exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Domain errors
var (
	// Not found
	ErrUserNotFound            = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound         = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound           = fmt.Errorf("order %w", ErrNotFound)
	ErrCategoryNotFound        = fmt.Errorf("category %w", ErrNotFound)
	ErrSupplierProfileNotFound = fmt.Errorf("supplier profile %w", ErrNotFound)

	// Conflicts
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrAlreadyShipped    = fmt.Errorf("%w: order already shipped", ErrConflict)
	ErrNegativeStock     = fmt.Errorf("%w: stock cannot go negative", ErrConflict)
	ErrDuplicateCategory = fmt.Errorf("%w: category name already taken", ErrConflict)
	ErrCategoryInUse     = fmt.Errorf("%w: category still in use by products", ErrConflict)
	ErrProductInUse      = fmt.Errorf("%w: product is part of order history", ErrConflict)
	ErrUsernameTaken     = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrEmailTaken        = fmt.Errorf("%w: email already in use", ErrConflict)

	// Forbidden
	ErrNotProductOwner = fmt.Errorf("%w: you do not own this product", ErrForbidden)
	ErrUserDisabled    = fmt.Errorf("%w: user account is disabled", ErrForbidden)
)

// InsufficientStockError reports which product could not cover a cart line.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s (product %d): requested %d, only %d available",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// Unwrap lets errors.Is match ErrInsufficientStock and ErrConflict.
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// Invalidf builds an ErrInvalidArgument with a formatted reason.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// CategoryOf returns the base category of err (one of ErrNotFound, ErrConflict,
// ErrForbidden, ErrInvalidArgument) or nil when err is not a domain error.
func CategoryOf(err error) error {
	for _, base := range []error{ErrNotFound, ErrConflict, ErrForbidden, ErrInvalidArgument} {
		if errors.Is(err, base) {
			return base
		}
	}
	return nil
}
