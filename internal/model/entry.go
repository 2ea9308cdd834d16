package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind identifies the three journal entry variants.
type EntryKind string

const (
	// EntryKindIncome credits a single account.
	EntryKindIncome EntryKind = "income"
	// EntryKindExpense debits a single account.
	EntryKindExpense EntryKind = "expense"
	// EntryKindTransfer moves money between two accounts of the same owner.
	EntryKindTransfer EntryKind = "transfer"
)

// ValidEntryKind reports whether k is a known entry kind.
func ValidEntryKind(k EntryKind) bool {
	switch k {
	case EntryKindIncome, EntryKindExpense, EntryKindTransfer:
		return true
	default:
		return false
	}
}

// Entry is one journal row: an income, an expense, or a transfer.
//
// AccountID is the credited account for income, the debited account for
// expense, and the source account for transfers. CounterAccountID is set
// only for transfers (the destination) and CategoryID only for income and
// expense. Transfers are immutable once created; they can only be deleted,
// which reverses both legs.
type Entry struct {
	Date             time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ID               string
	OwnerID          string
	Kind             EntryKind
	AccountID        string
	CounterAccountID string
	CategoryID       string
	Description      string
	Amount           decimal.Decimal
}

// IsTransfer reports whether the entry moves money between two accounts.
func (e *Entry) IsTransfer() bool {
	return e.Kind == EntryKindTransfer
}
