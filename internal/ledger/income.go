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

// EntryChanges describes an amendment to an income or expense entry. Nil
// fields stay untouched. Transfers cannot be amended at all.
type EntryChanges struct {
	AccountID   *string
	CategoryID  *string
	Amount      *decimal.Decimal
	Date        *time.Time
	Description *string
}

// CreateIncome records an income entry and credits its account, as one
// atomic unit.
func (l *Ledger) CreateIncome(ctx context.Context, ownerID, accountID, categoryID string, amount decimal.Decimal, date time.Time, description string) (*model.Entry, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, common.NewValidation("date is required")
	}

	// Advisory pre-check for a precise early rejection.
	if err := l.guard.AdmitAccount(ctx, ownerID, accountID); err != nil {
		return nil, err
	}

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	account, err := activeAccount(ctx, tx, ownerID, accountID)
	if err != nil {
		return nil, err
	}
	if _, err = activeCategory(ctx, tx, ownerID, categoryID, model.CategoryKindIncome); err != nil {
		return nil, err
	}

	entry := &model.Entry{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Kind:        model.EntryKindIncome,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      amount,
		Date:        date,
		Description: description,
	}

	if err = tx.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, accountID, account.Balance.Add(amount)); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit income: %w", err)
	}

	slog.Info("recorded income",
		"entry", entry.ID,
		"account", accountID,
		"amount", amount.String())
	return entry, nil
}

// UpdateIncome amends an income entry and reconciles the affected account
// balance(s) in the same transaction.
//
// When the account changes, the old account's credit is fully reversed and
// the new amount fully applied to the new account; the engine never applies
// a blended partial adjustment. Reversing a credit is a debit, so it is
// subject to the non-negative balance invariant like any other debit.
func (l *Ledger) UpdateIncome(ctx context.Context, ownerID, entryID string, changes EntryChanges) (*model.Entry, error) {
	if changes.Amount != nil {
		if err := validateAmount(*changes.Amount); err != nil {
			return nil, err
		}
	}

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := tx.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Kind != model.EntryKindIncome {
		return nil, common.NewValidation("entry %s is not an income", entryID)
	}

	newAccountID := entry.AccountID
	if changes.AccountID != nil {
		newAccountID = *changes.AccountID
	}
	newAmount := entry.Amount
	if changes.Amount != nil {
		newAmount = *changes.Amount
	}

	switch {
	case newAccountID != entry.AccountID:
		// Reverse the old account in full, then apply to the new one.
		// The old account may already be deactivated; reconciling its
		// history is still allowed.
		oldAccount, getErr := tx.GetAccount(ctx, ownerID, entry.AccountID)
		if getErr != nil {
			return nil, getErr
		}
		oldBalance, debitErr := debited(oldAccount, entry.Amount)
		if debitErr != nil {
			return nil, debitErr
		}
		newAccount, getErr := activeAccount(ctx, tx, ownerID, newAccountID)
		if getErr != nil {
			return nil, getErr
		}
		if err = tx.UpdateAccountBalance(ctx, ownerID, oldAccount.ID, oldBalance); err != nil {
			return nil, err
		}
		if err = tx.UpdateAccountBalance(ctx, ownerID, newAccount.ID, newAccount.Balance.Add(newAmount)); err != nil {
			return nil, err
		}

	case !newAmount.Equal(entry.Amount):
		account, getErr := tx.GetAccount(ctx, ownerID, entry.AccountID)
		if getErr != nil {
			return nil, getErr
		}
		delta := newAmount.Sub(entry.Amount)
		var balance decimal.Decimal
		if delta.IsPositive() {
			balance = account.Balance.Add(delta)
		} else {
			balance, err = debited(account, delta.Neg())
			if err != nil {
				return nil, err
			}
		}
		if err = tx.UpdateAccountBalance(ctx, ownerID, account.ID, balance); err != nil {
			return nil, err
		}
	}

	if changes.CategoryID != nil && *changes.CategoryID != entry.CategoryID {
		if _, err = activeCategory(ctx, tx, ownerID, *changes.CategoryID, model.CategoryKindIncome); err != nil {
			return nil, err
		}
		entry.CategoryID = *changes.CategoryID
	}
	if changes.Date != nil {
		if changes.Date.IsZero() {
			return nil, common.NewValidation("date is required")
		}
		entry.Date = *changes.Date
	}
	if changes.Description != nil {
		entry.Description = *changes.Description
	}
	entry.AccountID = newAccountID
	entry.Amount = newAmount

	if err = tx.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit income update: %w", err)
	}

	return entry, nil
}

// DeleteIncome removes an income entry and debits its account by the entry
// amount, atomically. The debit is floor-checked: deleting an income whose
// money has already been spent is rejected rather than driving the balance
// negative.
func (l *Ledger) DeleteIncome(ctx context.Context, ownerID, entryID string) error {
	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := tx.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		return err
	}
	if entry.Kind != model.EntryKindIncome {
		return common.NewValidation("entry %s is not an income", entryID)
	}

	account, err := tx.GetAccount(ctx, ownerID, entry.AccountID)
	if err != nil {
		return err
	}
	balance, err := debited(account, entry.Amount)
	if err != nil {
		return err
	}

	if err = tx.DeleteEntry(ctx, ownerID, entryID); err != nil {
		return err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, account.ID, balance); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit income deletion: %w", err)
	}

	slog.Info("deleted income", "entry", entryID, "account", account.ID)
	return nil
}
