package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "Validation error",
			err:      NewValidationError("items", "must contain at least one item"),
			sentinel: ErrValidation,
		},
		{
			name:     "Product not found",
			err:      &ProductNotFoundError{ProductID: 7},
			sentinel: ErrProductNotFound,
		},
		{
			name:     "Insufficient stock",
			err:      &InsufficientStockError{ProductID: 1, Requested: 10, Available: 5},
			sentinel: ErrInsufficientStock,
		},
		{
			name:     "Storage failure",
			err:      &StorageError{Op: "commit", Err: errors.New("connection reset")},
			sentinel: ErrStorageFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to create order: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.NotErrorIs(t, wrapped, ErrConflict)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("items[1].quantity", "must be greater than zero, got %d", -2)

	assert.Equal(t, "items[1].quantity", err.Field)
	assert.Equal(t, "items[1].quantity: must be greater than zero, got -2", err.Error())
}

func TestInsufficientStockError_Shortfall(t *testing.T) {
	err := &InsufficientStockError{ProductID: 1, Requested: 10, Available: 5}

	assert.Equal(t, 5, err.Shortfall())
	assert.Contains(t, err.Error(), "requested 10, available 5")

	var target *InsufficientStockError
	require.True(t, errors.As(fmt.Errorf("checkout: %w", err), &target))
	assert.Equal(t, int64(1), target.ProductID)
}

func TestStorageError_UnwrapsCause(t *testing.T) {
	err := &StorageError{Op: "checkout", Err: context.DeadlineExceeded}

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.Contains(t, err.Error(), "checkout")
}
