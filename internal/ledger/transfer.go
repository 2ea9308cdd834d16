package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// CreateTransfer moves money between two accounts of the same owner. Both
// legs commit or neither does; a one-legged transfer is a correctness bug,
// not an error state, so both balance writes ride the same transaction as
// the journal row.
func (l *Ledger) CreateTransfer(ctx context.Context, ownerID, fromAccountID, toAccountID string, amount decimal.Decimal, date time.Time, description string) (*model.Entry, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, common.NewValidation("date is required")
	}
	if fromAccountID == toAccountID {
		return nil, common.NewValidation("cannot transfer to the same account")
	}

	// Advisory pre-checks; re-validated inside the transaction.
	if err := l.guard.AdmitDebit(ctx, ownerID, fromAccountID, amount); err != nil {
		return nil, err
	}
	if err := l.guard.AdmitAccount(ctx, ownerID, toAccountID); err != nil {
		return nil, err
	}

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	from, err := activeAccount(ctx, tx, ownerID, fromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := activeAccount(ctx, tx, ownerID, toAccountID)
	if err != nil {
		return nil, err
	}

	fromBalance, err := debited(from, amount)
	if err != nil {
		return nil, err
	}

	entry := &model.Entry{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Kind:             model.EntryKindTransfer,
		AccountID:        fromAccountID,
		CounterAccountID: toAccountID,
		Amount:           amount,
		Date:             date,
		Description:      description,
	}

	if err = tx.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, from.ID, fromBalance); err != nil {
		return nil, err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, to.ID, to.Balance.Add(amount)); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	slog.Info("recorded transfer",
		"entry", entry.ID,
		"from", fromAccountID,
		"to", toAccountID,
		"amount", amount.String())
	return entry, nil
}

// DeleteTransfer reverses a transfer: the source gets its money back and
// the destination is debited, both-or-neither. Transfers have no amend
// operation; reversal is the only way to undo one.
//
// The destination debit is floor-checked like any other debit: if the
// transferred money has already left the destination account, the reversal
// is rejected with InsufficientBalance instead of driving the balance
// negative.
func (l *Ledger) DeleteTransfer(ctx context.Context, ownerID, entryID string) error {
	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := tx.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		return err
	}
	if entry.Kind != model.EntryKindTransfer {
		return common.NewValidation("entry %s is not a transfer", entryID)
	}

	from, err := tx.GetAccount(ctx, ownerID, entry.AccountID)
	if err != nil {
		return err
	}
	to, err := tx.GetAccount(ctx, ownerID, entry.CounterAccountID)
	if err != nil {
		return err
	}

	toBalance, err := debited(to, entry.Amount)
	if err != nil {
		return err
	}

	if err = tx.DeleteEntry(ctx, ownerID, entryID); err != nil {
		return err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, from.ID, from.Balance.Add(entry.Amount)); err != nil {
		return err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, to.ID, toBalance); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer reversal: %w", err)
	}

	slog.Info("reversed transfer",
		"entry", entryID,
		"from", entry.AccountID,
		"to", entry.CounterAccountID)
	return nil
}
