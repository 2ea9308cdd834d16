package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

const testOwner = "owner1"

// newTestLedger creates an engine backed by a real SQLite database.
func newTestLedger(t *testing.T) (*Ledger, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	return New(store), func() { _ = store.Close() }
}

func mustAccount(t *testing.T, l *Ledger, name, balance string) *model.Account {
	t.Helper()
	account, err := l.CreateAccount(context.Background(), testOwner, name,
		model.AccountTypeSpending, decimal.RequireFromString(balance))
	require.NoError(t, err)
	return account
}

func mustCategory(t *testing.T, l *Ledger, name string, kind model.CategoryKind) *model.Category {
	t.Helper()
	category, err := l.CreateCategory(context.Background(), testOwner, name, kind, nil)
	require.NoError(t, err)
	return category
}

func balanceOf(t *testing.T, l *Ledger, accountID string) string {
	t.Helper()
	balance, err := l.GetBalance(context.Background(), testOwner, accountID)
	require.NoError(t, err)
	return balance.String()
}

func testDate() time.Time {
	return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
}

// The ledger invariant: after any sequence of operations, every account
// balance equals its initial balance plus the signed sum of surviving
// journal entries touching it.
func TestBalanceEqualsJournalHistory(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	checking := mustAccount(t, l, "Checking", "100")
	savings := mustAccount(t, l, "Savings", "500")
	salary := mustCategory(t, l, "Salary", model.CategoryKindIncome)
	food := mustCategory(t, l, "Food", model.CategoryKindExpense)

	_, err := l.CreateIncome(ctx, testOwner, checking.ID, salary.ID, decimal.RequireFromString("2000"), testDate(), "paycheck")
	require.NoError(t, err)
	expense, err := l.CreateExpense(ctx, testOwner, checking.ID, food.ID, decimal.RequireFromString("150.75"), testDate(), "")
	require.NoError(t, err)
	_, err = l.CreateTransfer(ctx, testOwner, checking.ID, savings.ID, decimal.RequireFromString("300"), testDate(), "")
	require.NoError(t, err)
	require.NoError(t, l.DeleteExpense(ctx, testOwner, expense.ID))

	verifyInvariant(t, l, checking.ID, "100")
	verifyInvariant(t, l, savings.ID, "500")
	assert.Equal(t, "1800", balanceOf(t, l, checking.ID))
	assert.Equal(t, "800", balanceOf(t, l, savings.ID))
}

// verifyInvariant recomputes an account's balance from its journal history
// and compares it with the stored balance.
func verifyInvariant(t *testing.T, l *Ledger, accountID, initial string) {
	t.Helper()
	ctx := context.Background()

	entries, err := l.ListEntries(ctx, testOwner, service.EntryFilter{AccountID: accountID})
	require.NoError(t, err)

	expected := decimal.RequireFromString(initial)
	for i := range entries {
		entry := &entries[i]
		switch entry.Kind {
		case model.EntryKindIncome:
			expected = expected.Add(entry.Amount)
		case model.EntryKindExpense:
			expected = expected.Sub(entry.Amount)
		case model.EntryKindTransfer:
			if entry.AccountID == accountID {
				expected = expected.Sub(entry.Amount)
			} else {
				expected = expected.Add(entry.Amount)
			}
		}
	}

	assert.Equal(t, expected.String(), balanceOf(t, l, accountID))
}

// Under concurrent spending the account never goes negative: with funds for
// only one of the expenses, exactly one concurrent attempt succeeds.
func TestConcurrentExpensesNeverOverdraw(t *testing.T) {
	l, cleanup := newTestLedger(t)
	defer cleanup()
	ctx := context.Background()

	account := mustAccount(t, l, "Checking", "100")
	food := mustCategory(t, l, "Food", model.CategoryKindExpense)
	amount := decimal.RequireFromString("80")

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.CreateExpense(ctx, testOwner, account.ID, food.ID, amount, testDate(), "race")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, common.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, "20", balanceOf(t, l, account.ID))

	entries, err := l.ListEntries(ctx, testOwner, service.EntryFilter{Kind: model.EntryKindExpense})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
