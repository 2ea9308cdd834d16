package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func TestCreateTransfer(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	checking := mustAccount(t, l, "Checking", "300")
	savings := mustAccount(t, l, "Savings", "1000")

	entry, err := l.CreateTransfer(ctx, testOwner, checking.ID, savings.ID, decimal.RequireFromString("250"), testDate(), "monthly saving")
	require.NoError(t, err)
	assert.True(t, entry.IsTransfer())
	assert.Equal(t, checking.ID, entry.AccountID)
	assert.Equal(t, savings.ID, entry.CounterAccountID)

	// Both legs landed; total money is conserved.
	assert.Equal(t, "50", balanceOf(t, l, checking.ID))
	assert.Equal(t, "1250", balanceOf(t, l, savings.ID))
}

func TestCreateTransferRejections(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	checking := mustAccount(t, l, "Checking", "100")
	savings := mustAccount(t, l, "Savings", "0")

	t.Run("same account", func(t *testing.T) {
		_, err := l.CreateTransfer(ctx, testOwner, checking.ID, checking.ID, decimal.RequireFromString("10"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("insufficient source", func(t *testing.T) {
		_, err := l.CreateTransfer(ctx, testOwner, checking.ID, savings.ID, decimal.RequireFromString("100.01"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	})

	t.Run("inactive destination", func(t *testing.T) {
		closed := mustAccount(t, l, "Closed", "0")
		require.NoError(t, l.DeactivateAccount(ctx, testOwner, closed.ID))

		_, err := l.CreateTransfer(ctx, testOwner, checking.ID, closed.ID, decimal.RequireFromString("10"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("unknown destination", func(t *testing.T) {
		_, err := l.CreateTransfer(ctx, testOwner, checking.ID, "nope", decimal.RequireFromString("10"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	// No rejection moved any money or left a row behind.
	assert.Equal(t, "100", balanceOf(t, l, checking.ID))
	assert.Equal(t, "0", balanceOf(t, l, savings.ID))
	entries, err := l.ListEntries(ctx, testOwner, service.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteTransferReverses(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	checking := mustAccount(t, l, "Checking", "300")
	savings := mustAccount(t, l, "Savings", "0")

	entry, err := l.CreateTransfer(ctx, testOwner, checking.ID, savings.ID, decimal.RequireFromString("200"), testDate(), "")
	require.NoError(t, err)

	require.NoError(t, l.DeleteTransfer(ctx, testOwner, entry.ID))
	assert.Equal(t, "300", balanceOf(t, l, checking.ID))
	assert.Equal(t, "0", balanceOf(t, l, savings.ID))

	entries, err := l.ListEntries(ctx, testOwner, service.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteTransferBlockedWhenDestinationSpent(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	checking := mustAccount(t, l, "Checking", "300")
	savings := mustAccount(t, l, "Savings", "0")
	food := mustCategory(t, l, "Food", model.CategoryKindExpense)

	entry, err := l.CreateTransfer(ctx, testOwner, checking.ID, savings.ID, decimal.RequireFromString("200"), testDate(), "")
	require.NoError(t, err)

	// The destination spends most of the transferred money.
	_, err = l.CreateExpense(ctx, testOwner, savings.ID, food.ID, decimal.RequireFromString("150"), testDate(), "")
	require.NoError(t, err)

	// Reversing now would drive the destination negative; the deletion is
	// rejected and both balances stay put.
	err = l.DeleteTransfer(ctx, testOwner, entry.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	var insufficient *common.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, savings.ID, insufficient.AccountID)
	assert.Equal(t, "200", insufficient.Required.String())
	assert.Equal(t, "50", insufficient.Available.String())

	assert.Equal(t, "100", balanceOf(t, l, checking.ID))
	assert.Equal(t, "50", balanceOf(t, l, savings.ID))

	_, err = l.store.GetEntry(ctx, testOwner, entry.ID)
	assert.NoError(t, err)
}

func TestDeleteTransferKindMismatch(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	account := mustAccount(t, l, "Checking", "100")
	salary := mustCategory(t, l, "Salary", model.CategoryKindIncome)

	income, err := l.CreateIncome(ctx, testOwner, account.ID, salary.ID, decimal.RequireFromString("10"), testDate(), "")
	require.NoError(t, err)

	err = l.DeleteTransfer(ctx, testOwner, income.ID)
	assert.ErrorIs(t, err, common.ErrValidation)
}
