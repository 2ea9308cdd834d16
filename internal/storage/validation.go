// Package storage provides the data persistence layer for the tally application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidAccount  = errors.New("invalid account")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidEntry    = errors.New("invalid entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAccount validates an account row before it hits the database.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if account.OwnerID == "" {
		return fmt.Errorf("%w: missing owner ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if !model.ValidAccountType(account.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAccount, account.Type)
	}
	if account.Balance.IsNegative() {
		return fmt.Errorf("%w: negative balance", ErrInvalidAccount)
	}
	return nil
}

// validateCategory validates a category row.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if category.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCategory)
	}
	if category.OwnerID == "" {
		return fmt.Errorf("%w: missing owner ID", ErrInvalidCategory)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if !model.ValidCategoryKind(category.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCategory, category.Kind)
	}
	if category.Allowance != nil && !category.Allowance.IsPositive() {
		return fmt.Errorf("%w: allowance must be positive", ErrInvalidCategory)
	}
	return nil
}

// validateEntry validates a journal row.
func validateEntry(entry *model.Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidEntry)
	}
	if entry.OwnerID == "" {
		return fmt.Errorf("%w: missing owner ID", ErrInvalidEntry)
	}
	if !model.ValidEntryKind(entry.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, entry.Kind)
	}
	if entry.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidEntry)
	}
	if !entry.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidEntry)
	}
	switch entry.Kind {
	case model.EntryKindTransfer:
		if entry.CounterAccountID == "" {
			return fmt.Errorf("%w: transfer missing destination account", ErrInvalidEntry)
		}
		if entry.CategoryID != "" {
			return fmt.Errorf("%w: transfer cannot carry a category", ErrInvalidEntry)
		}
	case model.EntryKindIncome, model.EntryKindExpense:
		if entry.CategoryID == "" {
			return fmt.Errorf("%w: missing category ID", ErrInvalidEntry)
		}
		if entry.CounterAccountID != "" {
			return fmt.Errorf("%w: only transfers have a destination account", ErrInvalidEntry)
		}
	}
	return nil
}
