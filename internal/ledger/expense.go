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

// CreateExpense records an expense entry and debits its account, as one
// atomic unit. The sufficiency check that matters is the one inside the
// transaction; the admission guard only provides a fast early rejection.
func (l *Ledger) CreateExpense(ctx context.Context, ownerID, accountID, categoryID string, amount decimal.Decimal, date time.Time, description string) (*model.Entry, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, common.NewValidation("date is required")
	}

	// Advisory pre-check; possibly stale, re-validated below.
	if err := l.guard.AdmitDebit(ctx, ownerID, accountID, amount); err != nil {
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
	if _, err = activeCategory(ctx, tx, ownerID, categoryID, model.CategoryKindExpense); err != nil {
		return nil, err
	}

	balance, err := debited(account, amount)
	if err != nil {
		return nil, err
	}

	entry := &model.Entry{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Kind:        model.EntryKindExpense,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      amount,
		Date:        date,
		Description: description,
	}

	if err = tx.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, accountID, balance); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	slog.Info("recorded expense",
		"entry", entry.ID,
		"account", accountID,
		"amount", amount.String())
	return entry, nil
}

// UpdateExpense amends an expense entry, mirroring UpdateIncome with the
// signs inverted.
//
// When the account changes, the old account is refunded in full and the new
// amount is debited from the new account after a sufficiency check. When
// only the amount changes, the old debit is conceptually reversed first
// within the same operation, so the available funds for the check are
// current balance + existing amount.
func (l *Ledger) UpdateExpense(ctx context.Context, ownerID, entryID string, changes EntryChanges) (*model.Entry, error) {
	if changes.Amount != nil {
		if err := validateAmount(*changes.Amount); err != nil {
			return nil, err
		}
	}

	// Advisory pre-check against a non-transactional read; the
	// authoritative sufficiency check repeats inside the transaction.
	if existing, preErr := l.store.GetEntry(ctx, ownerID, entryID); preErr == nil && existing.Kind == model.EntryKindExpense {
		accountID := existing.AccountID
		if changes.AccountID != nil {
			accountID = *changes.AccountID
		}
		amount := existing.Amount
		if changes.Amount != nil {
			amount = *changes.Amount
		}
		if err := l.guard.AdmitExpenseAmendment(ctx, ownerID, existing, accountID, amount); err != nil {
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
	if entry.Kind != model.EntryKindExpense {
		return nil, common.NewValidation("entry %s is not an expense", entryID)
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
		// Refund the old account in full, then debit the new one.
		oldAccount, getErr := tx.GetAccount(ctx, ownerID, entry.AccountID)
		if getErr != nil {
			return nil, getErr
		}
		newAccount, getErr := activeAccount(ctx, tx, ownerID, newAccountID)
		if getErr != nil {
			return nil, getErr
		}
		newBalance, debitErr := debited(newAccount, newAmount)
		if debitErr != nil {
			return nil, debitErr
		}
		if err = tx.UpdateAccountBalance(ctx, ownerID, oldAccount.ID, oldAccount.Balance.Add(entry.Amount)); err != nil {
			return nil, err
		}
		if err = tx.UpdateAccountBalance(ctx, ownerID, newAccount.ID, newBalance); err != nil {
			return nil, err
		}

	case !newAmount.Equal(entry.Amount):
		account, getErr := tx.GetAccount(ctx, ownerID, entry.AccountID)
		if getErr != nil {
			return nil, getErr
		}
		available := account.Balance.Add(entry.Amount)
		if available.LessThan(newAmount) {
			return nil, common.NewInsufficientBalance(account.ID, newAmount, available)
		}
		if err = tx.UpdateAccountBalance(ctx, ownerID, account.ID, available.Sub(newAmount)); err != nil {
			return nil, err
		}
	}

	if changes.CategoryID != nil && *changes.CategoryID != entry.CategoryID {
		if _, err = activeCategory(ctx, tx, ownerID, *changes.CategoryID, model.CategoryKindExpense); err != nil {
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
		return nil, fmt.Errorf("failed to commit expense update: %w", err)
	}

	return entry, nil
}

// DeleteExpense removes an expense entry and refunds its account by the
// entry amount, atomically. Credits never violate the non-negative
// invariant, so deletion always succeeds once the entry is found.
func (l *Ledger) DeleteExpense(ctx context.Context, ownerID, entryID string) error {
	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := tx.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		return err
	}
	if entry.Kind != model.EntryKindExpense {
		return common.NewValidation("entry %s is not an expense", entryID)
	}

	account, err := tx.GetAccount(ctx, ownerID, entry.AccountID)
	if err != nil {
		return err
	}

	if err = tx.DeleteEntry(ctx, ownerID, entryID); err != nil {
		return err
	}
	if err = tx.UpdateAccountBalance(ctx, ownerID, account.ID, account.Balance.Add(entry.Amount)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense deletion: %w", err)
	}

	slog.Info("deleted expense", "entry", entryID, "account", account.ID)
	return nil
}
