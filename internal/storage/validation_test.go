package storage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/tally/internal/model"
)

func TestValidateAccount(t *testing.T) {
	valid := func() *model.Account { return testAccount("owner1", "Checking", "10") }

	tests := []struct {
		mutate  func(*model.Account)
		name    string
		wantErr bool
	}{
		{name: "valid account", mutate: func(*model.Account) {}, wantErr: false},
		{name: "missing id", mutate: func(a *model.Account) { a.ID = "" }, wantErr: true},
		{name: "missing owner", mutate: func(a *model.Account) { a.OwnerID = "" }, wantErr: true},
		{name: "blank name", mutate: func(a *model.Account) { a.Name = "   " }, wantErr: true},
		{name: "unknown type", mutate: func(a *model.Account) { a.Type = "offshore" }, wantErr: true},
		{name: "negative balance", mutate: func(a *model.Account) { a.Balance = decimal.RequireFromString("-1") }, wantErr: true},
		{name: "zero balance ok", mutate: func(a *model.Account) { a.Balance = decimal.Zero }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := valid()
			tt.mutate(account)
			err := validateAccount(account)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.ErrorIs(t, validateAccount(nil), ErrNilParameter)
}

func TestValidateCategory(t *testing.T) {
	t.Run("nil allowance ok", func(t *testing.T) {
		assert.NoError(t, validateCategory(testCategory("owner1", "Food", model.CategoryKindExpense)))
	})

	t.Run("zero allowance rejected", func(t *testing.T) {
		category := testCategory("owner1", "Food", model.CategoryKindExpense)
		zero := decimal.Zero
		category.Allowance = &zero
		assert.ErrorIs(t, validateCategory(category), ErrInvalidCategory)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		category := testCategory("owner1", "Food", "savings")
		assert.ErrorIs(t, validateCategory(category), ErrInvalidCategory)
	})
}

func TestValidateEntry(t *testing.T) {
	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("income needs a category and no destination", func(t *testing.T) {
		entry := testEntry("owner1", "acc1", "", model.EntryKindIncome, "10", date)
		assert.ErrorIs(t, validateEntry(entry), ErrInvalidEntry)

		entry.CategoryID = "cat1"
		assert.NoError(t, validateEntry(entry))

		entry.CounterAccountID = "acc2"
		assert.ErrorIs(t, validateEntry(entry), ErrInvalidEntry)
	})

	t.Run("transfer needs a destination and no category", func(t *testing.T) {
		entry := testEntry("owner1", "acc1", "", model.EntryKindTransfer, "10", date)
		assert.ErrorIs(t, validateEntry(entry), ErrInvalidEntry)

		entry.CounterAccountID = "acc2"
		assert.NoError(t, validateEntry(entry))

		entry.CategoryID = "cat1"
		assert.ErrorIs(t, validateEntry(entry), ErrInvalidEntry)
	})

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		entry := testEntry("owner1", "acc1", "cat1", model.EntryKindExpense, "10", date)
		entry.Amount = decimal.Zero
		assert.ErrorIs(t, validateEntry(entry), ErrInvalidEntry)

		entry.Amount = decimal.RequireFromString("-5")
		assert.ErrorIs(t, validateEntry(entry), ErrInvalidEntry)
	})

	t.Run("zero date rejected", func(t *testing.T) {
		entry := testEntry("owner1", "acc1", "cat1", model.EntryKindExpense, "10", time.Time{})
		assert.ErrorIs(t, validateEntry(entry), ErrInvalidEntry)
	})
}
