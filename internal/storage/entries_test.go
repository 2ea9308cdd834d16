package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// entriesFixture seeds two accounts and two categories for journal tests.
type entriesFixture struct {
	store    *SQLiteStorage
	account  *model.Account
	account2 *model.Account
	income   *model.Category
	expense  *model.Category
}

func newEntriesFixture(t *testing.T) (*entriesFixture, func()) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	ctx := context.Background()

	f := &entriesFixture{
		store:    store,
		account:  testAccount("owner1", "Checking", "500"),
		account2: testAccount("owner1", "Savings", "1000"),
		income:   testCategory("owner1", "Salary", model.CategoryKindIncome),
		expense:  testCategory("owner1", "Groceries", model.CategoryKindExpense),
	}
	require.NoError(t, store.CreateAccount(ctx, f.account))
	require.NoError(t, store.CreateAccount(ctx, f.account2))
	require.NoError(t, store.CreateCategory(ctx, f.income))
	require.NoError(t, store.CreateCategory(ctx, f.expense))
	return f, cleanup
}

func TestCreateAndGetEntry(t *testing.T) {
	f, cleanup := newEntriesFixture(t)
	defer cleanup()
	ctx := context.Background()

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	entry := testEntry("owner1", f.account.ID, f.expense.ID, model.EntryKindExpense, "42.99", date)
	entry.Description = "weekly shop"
	require.NoError(t, f.store.CreateEntry(ctx, entry))

	got, err := f.store.GetEntry(ctx, "owner1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EntryKindExpense, got.Kind)
	assert.Equal(t, f.account.ID, got.AccountID)
	assert.Equal(t, f.expense.ID, got.CategoryID)
	assert.Empty(t, got.CounterAccountID)
	assert.Equal(t, "42.99", got.Amount.String())
	assert.Equal(t, "weekly shop", got.Description)
	assert.True(t, got.Date.Equal(date))
}

func TestCreateTransferEntry(t *testing.T) {
	f, cleanup := newEntriesFixture(t)
	defer cleanup()
	ctx := context.Background()

	entry := testEntry("owner1", f.account.ID, "", model.EntryKindTransfer, "100", time.Now().UTC())
	entry.CounterAccountID = f.account2.ID
	require.NoError(t, f.store.CreateEntry(ctx, entry))

	got, err := f.store.GetEntry(ctx, "owner1", entry.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTransfer())
	assert.Equal(t, f.account2.ID, got.CounterAccountID)
	assert.Empty(t, got.CategoryID)
}

func TestUpdateEntry(t *testing.T) {
	f, cleanup := newEntriesFixture(t)
	defer cleanup()
	ctx := context.Background()

	entry := testEntry("owner1", f.account.ID, f.expense.ID, model.EntryKindExpense, "10", time.Now().UTC())
	require.NoError(t, f.store.CreateEntry(ctx, entry))

	entry.Amount = decimal.RequireFromString("25.50")
	entry.AccountID = f.account2.ID
	entry.Description = "corrected"
	require.NoError(t, f.store.UpdateEntry(ctx, entry))

	got, err := f.store.GetEntry(ctx, "owner1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.5", got.Amount.String())
	assert.Equal(t, f.account2.ID, got.AccountID)
	assert.Equal(t, "corrected", got.Description)
}

func TestDeleteEntry(t *testing.T) {
	f, cleanup := newEntriesFixture(t)
	defer cleanup()
	ctx := context.Background()

	entry := testEntry("owner1", f.account.ID, f.expense.ID, model.EntryKindExpense, "10", time.Now().UTC())
	require.NoError(t, f.store.CreateEntry(ctx, entry))

	require.NoError(t, f.store.DeleteEntry(ctx, "owner1", entry.ID))

	_, err := f.store.GetEntry(ctx, "owner1", entry.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = f.store.DeleteEntry(ctx, "owner1", entry.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListEntriesFilters(t *testing.T) {
	f, cleanup := newEntriesFixture(t)
	defer cleanup()
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }

	older := testEntry("owner1", f.account.ID, f.expense.ID, model.EntryKindExpense, "10", day(1))
	require.NoError(t, f.store.CreateEntry(ctx, older))

	newer := testEntry("owner1", f.account.ID, f.income.ID, model.EntryKindIncome, "2000", day(20))
	require.NoError(t, f.store.CreateEntry(ctx, newer))

	transfer := testEntry("owner1", f.account2.ID, "", model.EntryKindTransfer, "50", day(10))
	transfer.CounterAccountID = f.account.ID
	require.NoError(t, f.store.CreateEntry(ctx, transfer))

	t.Run("no filter returns all newest first", func(t *testing.T) {
		entries, err := f.store.ListEntries(ctx, "owner1", service.EntryFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, newer.ID, entries[0].ID)
		assert.Equal(t, transfer.ID, entries[1].ID)
		assert.Equal(t, older.ID, entries[2].ID)
	})

	t.Run("kind filter", func(t *testing.T) {
		entries, err := f.store.ListEntries(ctx, "owner1", service.EntryFilter{Kind: model.EntryKindExpense})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, older.ID, entries[0].ID)
	})

	t.Run("account filter matches either leg of a transfer", func(t *testing.T) {
		entries, err := f.store.ListEntries(ctx, "owner1", service.EntryFilter{AccountID: f.account.ID})
		require.NoError(t, err)
		assert.Len(t, entries, 3)

		entries, err = f.store.ListEntries(ctx, "owner1", service.EntryFilter{AccountID: f.account2.ID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, transfer.ID, entries[0].ID)
	})

	t.Run("date window is start-inclusive end-exclusive", func(t *testing.T) {
		start := day(1)
		end := day(10)
		entries, err := f.store.ListEntries(ctx, "owner1", service.EntryFilter{Start: &start, End: &end})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, older.ID, entries[0].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		entries, err := f.store.ListEntries(ctx, "owner1", service.EntryFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		entries, err = f.store.ListEntries(ctx, "owner1", service.EntryFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, older.ID, entries[0].ID)
	})

	t.Run("other owner sees nothing", func(t *testing.T) {
		entries, err := f.store.ListEntries(ctx, "owner2", service.EntryFilter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
