// Package ledger implements the balance mutation engine: every journal
// operation applies its balance effect(s) and persists the journal row as a
// single atomic storage transaction. No observer ever sees a journal row
// without its balance effect, or a balance effect without its row.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Ledger coordinates journal entries and account balances.
//
// Concurrent callers are not serialized in-process; the storage transaction
// is the only synchronization point. Every debit re-reads the balance inside
// its transaction, so a stale admission-guard read can never cause an
// overdraft, only a late rejection.
type Ledger struct {
	store service.Storage
	guard *Guard
}

// New creates a Ledger backed by the given storage.
func New(store service.Storage) *Ledger {
	return &Ledger{
		store: store,
		guard: NewGuard(store),
	}
}

// Guard exposes the admission guard, for callers that want to pre-check a
// debit without performing it.
func (l *Ledger) Guard() *Guard {
	return l.guard
}

// ListEntries returns journal entries matching the filter, newest first.
func (l *Ledger) ListEntries(ctx context.Context, ownerID string, filter service.EntryFilter) ([]model.Entry, error) {
	return l.store.ListEntries(ctx, ownerID, filter)
}

// activeAccount loads an account within the transaction and rejects
// inactive ones. Missing and not-owned accounts surface as NotFound.
func activeAccount(ctx context.Context, tx service.Transaction, ownerID, id string) (*model.Account, error) {
	account, err := tx.GetAccount(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, common.NewValidation("account %q is inactive", account.Name)
	}
	return account, nil
}

// activeCategory loads a category within the transaction and checks that it
// is active and of the expected kind.
func activeCategory(ctx context.Context, tx service.Transaction, ownerID, id string, kind model.CategoryKind) (*model.Category, error) {
	category, err := tx.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, common.NewValidation("category %q is inactive", category.Name)
	}
	if category.Kind != kind {
		return nil, common.NewValidation("category %q is not an %s category", category.Name, kind)
	}
	return category, nil
}

// debited returns the account balance after removing amount, or an
// InsufficientBalance rejection when the account cannot cover it. Every
// downward balance adjustment in the engine goes through this check, so no
// operation can leave a balance negative.
func debited(account *model.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	if account.Balance.LessThan(amount) {
		return decimal.Zero, common.NewInsufficientBalance(account.ID, amount, account.Balance)
	}
	return account.Balance.Sub(amount), nil
}

// validateAmount rejects non-positive entry amounts.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.NewValidation("amount must be positive, got %s", amount)
	}
	return nil
}
