package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := NewNotFound("account", "abc")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "account")
		assert.Contains(t, err.Error(), "abc")
	})

	t.Run("validation", func(t *testing.T) {
		err := NewValidation("amount must be positive, got %s", "-5")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "-5")
	})

	t.Run("insufficient balance", func(t *testing.T) {
		err := NewInsufficientBalance("acc1", decimal.RequireFromString("300"), decimal.RequireFromString("250"))
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		var insufficient *InsufficientBalanceError
		assert.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "acc1", insufficient.AccountID)
		assert.Equal(t, "300", insufficient.Required.String())
		assert.Equal(t, "250", insufficient.Available.String())
	})

	t.Run("wrapping survives fmt.Errorf", func(t *testing.T) {
		err := fmt.Errorf("context: %w", NewNotFound("entry", "e1"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(NewNotFound("account", "a1")))
	assert.True(t, IsClientError(NewValidation("bad input")))
	assert.True(t, IsClientError(NewInsufficientBalance("a1", decimal.NewFromInt(1), decimal.Zero)))

	assert.False(t, IsClientError(errors.New("disk on fire")))
	assert.False(t, IsClientError(NewStorageError("query", errors.New("locked"))))
	assert.False(t, IsClientError(nil))
}
