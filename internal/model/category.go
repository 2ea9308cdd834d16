package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryKind indicates whether a category classifies income or expenses.
type CategoryKind string

const (
	// CategoryKindIncome represents categories for income entries.
	CategoryKindIncome CategoryKind = "income"
	// CategoryKindExpense represents categories for expense entries.
	CategoryKindExpense CategoryKind = "expense"
)

// ValidCategoryKind reports whether k is a known category kind.
func ValidCategoryKind(k CategoryKind) bool {
	return k == CategoryKindIncome || k == CategoryKindExpense
}

// Category labels journal entries and optionally carries an allowance:
// a monthly target for income categories, a monthly budget for expense
// categories. Names are unique per owner per kind. Allowance must be
// positive when present.
type Category struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Allowance *decimal.Decimal
	ID        string
	OwnerID   string
	Name      string
	Kind      CategoryKind
	IsActive  bool
}
