package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testAccount(ownerID, name string, balance string) *model.Account {
	return &model.Account{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     name,
		Type:     model.AccountTypeSpending,
		Balance:  decimal.RequireFromString(balance),
		IsActive: true,
	}
}

func testCategory(ownerID, name string, kind model.CategoryKind) *model.Category {
	return &model.Category{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     name,
		Kind:     kind,
		IsActive: true,
	}
}

func testEntry(ownerID, accountID, categoryID string, kind model.EntryKind, amount string, date time.Time) *model.Entry {
	return &model.Entry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Kind:       kind,
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates parent directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "nested", "deeper", "test.db")

		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Migrate(context.Background()))
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		assert.Error(t, err)
	})
}

func TestTransactionCommit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := testAccount("owner1", "Checking", "100")
	require.NoError(t, store.CreateAccount(ctx, account))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.UpdateAccountBalance(ctx, "owner1", account.ID, decimal.RequireFromString("250")))
	require.NoError(t, tx.Commit())

	got, err := store.GetAccount(ctx, "owner1", account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("250")))
}

func TestTransactionRollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := testAccount("owner1", "Checking", "100")
	require.NoError(t, store.CreateAccount(ctx, account))
	other := testAccount("owner1", "Savings", "0")
	require.NoError(t, store.CreateAccount(ctx, other))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	entry := testEntry("owner1", account.ID, "", model.EntryKindTransfer, "40", time.Now().UTC())
	entry.CounterAccountID = other.ID
	require.NoError(t, tx.CreateEntry(ctx, entry))
	require.NoError(t, tx.UpdateAccountBalance(ctx, "owner1", account.ID, decimal.RequireFromString("60")))
	require.NoError(t, tx.Rollback())

	// Neither the entry nor the balance change survives the rollback.
	got, err := store.GetAccount(ctx, "owner1", account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("100")))

	_, err = store.GetEntry(ctx, "owner1", entry.ID)
	assert.Error(t, err)
}

func TestTransactionRejectsNestedUse(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)

	assert.Error(t, tx.Migrate(ctx))
	assert.Error(t, tx.Close())
}

func TestDecimalRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	// Values that lose precision as float64 must survive storage exactly.
	account := testAccount("owner1", "Precise", "0.1")
	require.NoError(t, store.CreateAccount(ctx, account))

	balance := decimal.RequireFromString("0.1")
	for i := 0; i < 10; i++ {
		balance = balance.Add(decimal.RequireFromString("0.1"))
		require.NoError(t, store.UpdateAccountBalance(ctx, "owner1", account.ID, balance))
	}

	got, err := store.GetAccount(ctx, "owner1", account.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.1", got.Balance.String())
}
