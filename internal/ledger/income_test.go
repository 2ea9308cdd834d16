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

func TestCreateIncome(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	account := mustAccount(t, l, "Checking", "100")
	salary := mustCategory(t, l, "Salary", model.CategoryKindIncome)

	entry, err := l.CreateIncome(ctx, testOwner, account.ID, salary.ID, decimal.RequireFromString("2500.50"), testDate(), "August pay")
	require.NoError(t, err)
	assert.Equal(t, model.EntryKindIncome, entry.Kind)
	assert.Equal(t, "2500.5", entry.Amount.String())
	assert.Equal(t, "2600.5", balanceOf(t, l, account.ID))
}

func TestCreateIncomeRejections(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	account := mustAccount(t, l, "Checking", "100")
	salary := mustCategory(t, l, "Salary", model.CategoryKindIncome)
	food := mustCategory(t, l, "Food", model.CategoryKindExpense)

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := l.CreateIncome(ctx, testOwner, account.ID, salary.ID, decimal.Zero, testDate(), "")
		assert.ErrorIs(t, err, common.ErrValidation)

		_, err = l.CreateIncome(ctx, testOwner, account.ID, salary.ID, decimal.RequireFromString("-5"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("expense category", func(t *testing.T) {
		_, err := l.CreateIncome(ctx, testOwner, account.ID, food.ID, decimal.RequireFromString("10"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := l.CreateIncome(ctx, testOwner, "nope", salary.ID, decimal.RequireFromString("10"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("inactive account", func(t *testing.T) {
		closed := mustAccount(t, l, "Closed", "0")
		require.NoError(t, l.DeactivateAccount(ctx, testOwner, closed.ID))

		_, err := l.CreateIncome(ctx, testOwner, closed.ID, salary.ID, decimal.RequireFromString("10"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("inactive category", func(t *testing.T) {
		retired := mustCategory(t, l, "Old Job", model.CategoryKindIncome)
		require.NoError(t, l.DeactivateCategory(ctx, testOwner, retired.ID))

		_, err := l.CreateIncome(ctx, testOwner, account.ID, retired.ID, decimal.RequireFromString("10"), testDate(), "")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	// No rejection leaked a journal row or moved the balance.
	assert.Equal(t, "100", balanceOf(t, l, account.ID))
	entries, err := l.ListEntries(ctx, testOwner, service.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateIncomeAmount(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	account := mustAccount(t, l, "Checking", "0")
	salary := mustCategory(t, l, "Salary", model.CategoryKindIncome)

	entry, err := l.CreateIncome(ctx, testOwner, account.ID, salary.ID, decimal.RequireFromString("1000"), testDate(), "")
	require.NoError(t, err)

	t.Run("growing applies the delta", func(t *testing.T) {
		amount := decimal.RequireFromString("1200")
		_, err := l.UpdateIncome(ctx, testOwner, entry.ID, EntryChanges{Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, "1200", balanceOf(t, l, account.ID))
	})

	t.Run("shrinking is floor-checked", func(t *testing.T) {
		// Spend most of it, then try to shrink the income below what is left.
		food := mustCategory(t, l, "Food", model.CategoryKindExpense)
		_, err := l.CreateExpense(ctx, testOwner, account.ID, food.ID, decimal.RequireFromString("1100"), testDate(), "")
		require.NoError(t, err)

		amount := decimal.RequireFromString("900")
		_, err = l.UpdateIncome(ctx, testOwner, entry.ID, EntryChanges{Amount: &amount})
		assert.ErrorIs(t, err, common.ErrInsufficientBalance)
		assert.Equal(t, "100", balanceOf(t, l, account.ID))

		// A shrink the balance can absorb goes through.
		amount = decimal.RequireFromString("1150")
		_, err = l.UpdateIncome(ctx, testOwner, entry.ID, EntryChanges{Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, "50", balanceOf(t, l, account.ID))
	})
}

func TestUpdateIncomeAccountMove(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	oldAccount := mustAccount(t, l, "Old", "0")
	newAccount := mustAccount(t, l, "New", "50")
	salary := mustCategory(t, l, "Salary", model.CategoryKindIncome)

	entry, err := l.CreateIncome(ctx, testOwner, oldAccount.ID, salary.ID, decimal.RequireFromString("1000"), testDate(), "")
	require.NoError(t, err)

	t.Run("full reversal plus full application", func(t *testing.T) {
		amount := decimal.RequireFromString("1000")
		updated, err := l.UpdateIncome(ctx, testOwner, entry.ID, EntryChanges{AccountID: &newAccount.ID, Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, newAccount.ID, updated.AccountID)
		assert.Equal(t, "0", balanceOf(t, l, oldAccount.ID))
		assert.Equal(t, "1050", balanceOf(t, l, newAccount.ID))
	})

	t.Run("reversal blocked when credit already spent", func(t *testing.T) {
		// Drain the account holding the income, then try to move the entry.
		food := mustCategory(t, l, "Food", model.CategoryKindExpense)
		_, err := l.CreateExpense(ctx, testOwner, newAccount.ID, food.ID, decimal.RequireFromString("600"), testDate(), "")
		require.NoError(t, err)

		_, err = l.UpdateIncome(ctx, testOwner, entry.ID, EntryChanges{AccountID: &oldAccount.ID})
		assert.ErrorIs(t, err, common.ErrInsufficientBalance)

		// Nothing moved.
		assert.Equal(t, "0", balanceOf(t, l, oldAccount.ID))
		assert.Equal(t, "450", balanceOf(t, l, newAccount.ID))
	})
}

func TestDeleteIncome(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	account := mustAccount(t, l, "Checking", "0")
	salary := mustCategory(t, l, "Salary", model.CategoryKindIncome)
	food := mustCategory(t, l, "Food", model.CategoryKindExpense)

	entry, err := l.CreateIncome(ctx, testOwner, account.ID, salary.ID, decimal.RequireFromString("500"), testDate(), "")
	require.NoError(t, err)

	t.Run("blocked when money already spent", func(t *testing.T) {
		_, err := l.CreateExpense(ctx, testOwner, account.ID, food.ID, decimal.RequireFromString("300"), testDate(), "")
		require.NoError(t, err)

		err = l.DeleteIncome(ctx, testOwner, entry.ID)
		assert.ErrorIs(t, err, common.ErrInsufficientBalance)

		// The entry survives a failed deletion.
		_, err = l.store.GetEntry(ctx, testOwner, entry.ID)
		assert.NoError(t, err)
	})

	t.Run("debits the account when covered", func(t *testing.T) {
		_, err := l.CreateIncome(ctx, testOwner, account.ID, salary.ID, decimal.RequireFromString("400"), testDate(), "")
		require.NoError(t, err)

		require.NoError(t, l.DeleteIncome(ctx, testOwner, entry.ID))
		assert.Equal(t, "100", balanceOf(t, l, account.ID))

		_, err = l.store.GetEntry(ctx, testOwner, entry.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("kind mismatch rejected", func(t *testing.T) {
		expense, err := l.CreateExpense(ctx, testOwner, account.ID, food.ID, decimal.RequireFromString("10"), testDate(), "")
		require.NoError(t, err)

		err = l.DeleteIncome(ctx, testOwner, expense.ID)
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}
