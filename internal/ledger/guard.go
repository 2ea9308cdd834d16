package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// Guard is the admission guard: a fast, non-authoritative pre-check of
// ownership, activity, and sufficiency that runs ahead of debit-causing
// operations so callers get a precise rejection early.
//
// Its reads happen outside any transaction and may be stale under
// concurrency. The authoritative rejection is the one co-located with the
// engine's atomic write; the guard only spares the database a doomed
// transaction in the common case.
type Guard struct {
	store service.Storage
}

// NewGuard creates a Guard backed by the given storage.
func NewGuard(store service.Storage) *Guard {
	return &Guard{store: store}
}

// AdmitAccount verifies the account exists, is owned by the caller, and is
// active.
func (g *Guard) AdmitAccount(ctx context.Context, ownerID, accountID string) error {
	account, err := g.store.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return common.NewValidation("account %q is inactive", account.Name)
	}
	return nil
}

// AdmitDebit verifies the account can cover a debit of the required amount
// at the point in time of the read.
func (g *Guard) AdmitDebit(ctx context.Context, ownerID, accountID string, required decimal.Decimal) error {
	account, err := g.store.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return common.NewValidation("account %q is inactive", account.Name)
	}
	if account.Balance.LessThan(required) {
		return common.NewInsufficientBalance(account.ID, required, account.Balance)
	}
	return nil
}

// AdmitExpenseAmendment pre-checks an expense amendment that may debit more
// than the existing entry does. On the same account the old debit counts as
// reversed first, so the available funds are current balance + existing
// amount; on an account change the new account must cover the full new
// amount.
func (g *Guard) AdmitExpenseAmendment(ctx context.Context, ownerID string, existing *model.Entry, accountID string, amount decimal.Decimal) error {
	if accountID != existing.AccountID {
		return g.AdmitDebit(ctx, ownerID, accountID, amount)
	}
	if amount.LessThanOrEqual(existing.Amount) {
		return nil
	}
	account, err := g.store.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return err
	}
	available := account.Balance.Add(existing.Amount)
	if available.LessThan(amount) {
		return common.NewInsufficientBalance(account.ID, amount, available)
	}
	return nil
}
