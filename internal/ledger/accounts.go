package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// AccountChanges describes an account amendment. Nil fields stay untouched.
type AccountChanges struct {
	Name   *string
	Active *bool
}

// CreateAccount opens a new account with a non-negative starting balance.
func (l *Ledger) CreateAccount(ctx context.Context, ownerID, name string, accountType model.AccountType, initialBalance decimal.Decimal) (*model.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidation("account name cannot be empty")
	}
	if !model.ValidAccountType(accountType) {
		return nil, common.NewValidation("unknown account type %q", accountType)
	}
	if initialBalance.IsNegative() {
		return nil, common.NewValidation("initial balance cannot be negative, got %s", initialBalance)
	}

	account := &model.Account{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     name,
		Type:     accountType,
		Balance:  initialBalance,
		IsActive: true,
	}

	if err := l.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns a single account owned by the caller.
func (l *Ledger) GetAccount(ctx context.Context, ownerID, id string) (*model.Account, error) {
	return l.store.GetAccount(ctx, ownerID, id)
}

// ListAccounts returns every account for the owner.
func (l *Ledger) ListAccounts(ctx context.Context, ownerID string) ([]model.Account, error) {
	return l.store.ListAccounts(ctx, ownerID)
}

// UpdateAccount amends an account's name or active flag. Balances cannot be
// edited here; only journal operations move money.
func (l *Ledger) UpdateAccount(ctx context.Context, ownerID, id string, changes AccountChanges) (*model.Account, error) {
	account, err := l.store.GetAccount(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil {
		if strings.TrimSpace(*changes.Name) == "" {
			return nil, common.NewValidation("account name cannot be empty")
		}
		account.Name = *changes.Name
	}
	if changes.Active != nil {
		account.IsActive = *changes.Active
	}

	if err := l.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeactivateAccount soft-deletes an account. The balance and journal
// history are kept so past entries stay explainable.
func (l *Ledger) DeactivateAccount(ctx context.Context, ownerID, id string) error {
	active := false
	_, err := l.UpdateAccount(ctx, ownerID, id, AccountChanges{Active: &active})
	return err
}

// GetBalance returns the current balance of an owned account.
func (l *Ledger) GetBalance(ctx context.Context, ownerID, id string) (decimal.Decimal, error) {
	account, err := l.store.GetAccount(ctx, ownerID, id)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// AccountSummary groups active accounts by type with their combined balance
// and count.
func (l *Ledger) AccountSummary(ctx context.Context, ownerID string) ([]service.AccountTypeSummary, error) {
	return l.store.AccountSummary(ctx, ownerID)
}
