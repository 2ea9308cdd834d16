package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType describes what kind of account holds the money.
type AccountType string

const (
	// AccountTypeSaving is a savings account.
	AccountTypeSaving AccountType = "saving"
	// AccountTypeSpending is a day-to-day spending account.
	AccountTypeSpending AccountType = "spending"
	// AccountTypeWallet is physical cash.
	AccountTypeWallet AccountType = "wallet"
	// AccountTypeInvestment is an investment account.
	AccountTypeInvestment AccountType = "investment"
	// AccountTypeBusiness is a business account.
	AccountTypeBusiness AccountType = "business"
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeSaving, AccountTypeSpending, AccountTypeWallet,
		AccountTypeInvestment, AccountTypeBusiness:
		return true
	default:
		return false
	}
}

// Account is a single monetary account owned by one user.
//
// Balance is mutated only by the ledger engine; it always equals the running
// effect of the account's non-deleted journal entries and never goes negative.
// Accounts are deactivated rather than deleted so history stays explainable.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	OwnerID   string
	Name      string
	Type      AccountType
	Balance   decimal.Decimal
	IsActive  bool
}
