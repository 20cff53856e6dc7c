package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", ErrProductNotFound, ErrNotFound},
		{"wrapped not found", fmt.Errorf("%w: id 7", ErrOrderNotFound), ErrNotFound},
		{"conflict", ErrAlreadyShipped, ErrConflict},
		{"stock error", &InsufficientStockError{ProductID: 1, Available: 2, Requested: 3}, ErrConflict},
		{"forbidden", ErrUserDisabled, ErrForbidden},
		{"invalid", Invalidf("quantity must be positive"), ErrInvalidArgument},
		{"plain error", errors.New("disk full"), nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.err))
		})
	}
}

func TestInsufficientStockError(t *testing.T) {
	err := error(&InsufficientStockError{ProductID: 4, ProductName: "Widget", Available: 2, Requested: 3})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "Widget")
	assert.Contains(t, err.Error(), "only 2 available")
}
