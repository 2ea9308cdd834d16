// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// EntryFilter defines filtering options for journal entry queries.
// Zero fields are ignored.
type EntryFilter struct {
	Start     *time.Time
	End       *time.Time
	Kind      model.EntryKind
	AccountID string
	Limit     int
	Offset    int
}

// AccountTypeSummary aggregates active accounts of one type.
type AccountTypeSummary struct {
	Type    model.AccountType
	Balance decimal.Decimal
	Count   int
}

// Storage defines the contract for our persistence layer.
//
// Every method is owner-scoped: a record that exists but belongs to a
// different owner behaves exactly like a missing record.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, ownerID, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, ownerID string) ([]model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	// UpdateAccountBalance persists a new balance for the account. Callers
	// must only invoke it inside a Transaction, together with the journal
	// row that explains the change.
	UpdateAccountBalance(ctx context.Context, ownerID, id string, balance decimal.Decimal) error
	AccountSummary(ctx context.Context, ownerID string) ([]AccountTypeSummary, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, ownerID, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, ownerID string, kind model.CategoryKind, name string) (*model.Category, error)
	ListCategories(ctx context.Context, ownerID string, kind model.CategoryKind) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error

	// Journal operations
	CreateEntry(ctx context.Context, entry *model.Entry) error
	GetEntry(ctx context.Context, ownerID, id string) (*model.Entry, error)
	UpdateEntry(ctx context.Context, entry *model.Entry) error
	DeleteEntry(ctx context.Context, ownerID, id string) error
	ListEntries(ctx context.Context, ownerID string, filter EntryFilter) ([]model.Entry, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. Balance-affecting
// operations run entirely through one Transaction so that the journal row
// and its balance effect commit or roll back as a unit.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
