// Package report implements the aggregation engine: monthly summaries,
// budget and target status, trend series, and the dashboard overview. All
// reads are lock-free and observe committed journal state as of query time.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

var hundred = decimal.NewFromInt(100)

// Reporter computes aggregations over committed journal state.
type Reporter struct {
	store service.Storage
	now   func() time.Time
}

// New creates a Reporter backed by the given storage.
func New(store service.Storage) *Reporter {
	return &Reporter{
		store: store,
		now:   time.Now,
	}
}

// CategoryAmount is one category's share of a monthly summary, joined with
// the category's allowance (target for income, budget for expense).
type CategoryAmount struct {
	Allowance  *decimal.Decimal
	CategoryID string
	Name       string
	Amount     decimal.Decimal
}

// MonthlySummary sums one entry kind over a calendar month, by category.
type MonthlySummary struct {
	Categories []CategoryAmount
	Kind       model.CategoryKind
	Total      decimal.Decimal
	Year       int
	Month      time.Month
}

// BudgetLine reports one expense category's current-month spending against
// its budget.
type BudgetLine struct {
	CategoryID   string
	Name         string
	Budget       decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	Percentage   decimal.Decimal
	IsOverBudget bool
}

// TargetLine reports one income category's current-month income against its
// target.
type TargetLine struct {
	CategoryID string
	Name       string
	Target     decimal.Decimal
	Received   decimal.Decimal
	Remaining  decimal.Decimal
	Percentage decimal.Decimal
	IsMet      bool
}

// MonthTrend is one month's totals in a trend series.
type MonthTrend struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
}

// CategoryShare is one category's percentage share of a monthly total.
type CategoryShare struct {
	CategoryID string
	Name       string
	Amount     decimal.Decimal
	Share      decimal.Decimal
}

// Trends is a multi-month series plus the current month's category
// distribution for both kinds.
type Trends struct {
	Months        []MonthTrend
	IncomeShares  []CategoryShare
	ExpenseShares []CategoryShare
}

// Overview composes the dashboard: account summary, current-month income
// vs target and expense vs budget, net savings, and the most recent
// entries across all three journal kinds.
type Overview struct {
	Accounts     []service.AccountTypeSummary
	Recent       []model.Entry
	IncomeTotal  decimal.Decimal
	TargetTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	BudgetTotal  decimal.Decimal
	NetSavings   decimal.Decimal
}

// MonthlySummary sums entries of one kind within the calendar month,
// grouped by category and joined with each category's allowance.
func (r *Reporter) MonthlySummary(ctx context.Context, ownerID string, year int, month time.Month, kind model.CategoryKind) (*MonthlySummary, error) {
	if !model.ValidCategoryKind(kind) {
		return nil, common.NewValidation("unknown category kind %q", kind)
	}
	if month < time.January || month > time.December {
		return nil, common.NewValidation("invalid month %d", month)
	}

	entries, err := r.monthEntries(ctx, ownerID, entryKindFor(kind), year, month)
	if err != nil {
		return nil, err
	}

	summary := &MonthlySummary{
		Year:  year,
		Month: month,
		Kind:  kind,
		Total: decimal.Zero,
	}

	byCategory := make(map[string]decimal.Decimal)
	for i := range entries {
		entry := &entries[i]
		byCategory[entry.CategoryID] = byCategory[entry.CategoryID].Add(entry.Amount)
		summary.Total = summary.Total.Add(entry.Amount)
	}

	for categoryID, amount := range byCategory {
		category, getErr := r.store.GetCategory(ctx, ownerID, categoryID)
		if getErr != nil {
			return nil, getErr
		}
		summary.Categories = append(summary.Categories, CategoryAmount{
			CategoryID: categoryID,
			Name:       category.Name,
			Amount:     amount,
			Allowance:  category.Allowance,
		})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Name < summary.Categories[j].Name
	})

	return summary, nil
}

// BudgetStatus reports current-month spending against every budgeted
// expense category. Remaining never goes below zero and the percentage is
// capped at 100; IsOverBudget carries the overshoot signal instead.
func (r *Reporter) BudgetStatus(ctx context.Context, ownerID string) ([]BudgetLine, error) {
	now := r.now()
	spent, err := r.monthCategorySums(ctx, ownerID, model.EntryKindExpense, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	categories, err := r.store.ListCategories(ctx, ownerID, model.CategoryKindExpense)
	if err != nil {
		return nil, err
	}

	var lines []BudgetLine
	for i := range categories {
		category := &categories[i]
		if category.Allowance == nil {
			continue
		}
		budget := *category.Allowance
		amount := spent[category.ID]

		lines = append(lines, BudgetLine{
			CategoryID:   category.ID,
			Name:         category.Name,
			Budget:       budget,
			Spent:        amount,
			Remaining:    floorZero(budget.Sub(amount)),
			Percentage:   cappedPercent(amount, budget),
			IsOverBudget: amount.GreaterThan(budget),
		})
	}
	return lines, nil
}

// TargetProgress mirrors BudgetStatus for income categories with targets.
func (r *Reporter) TargetProgress(ctx context.Context, ownerID string) ([]TargetLine, error) {
	now := r.now()
	received, err := r.monthCategorySums(ctx, ownerID, model.EntryKindIncome, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	categories, err := r.store.ListCategories(ctx, ownerID, model.CategoryKindIncome)
	if err != nil {
		return nil, err
	}

	var lines []TargetLine
	for i := range categories {
		category := &categories[i]
		if category.Allowance == nil {
			continue
		}
		target := *category.Allowance
		amount := received[category.ID]

		lines = append(lines, TargetLine{
			CategoryID: category.ID,
			Name:       category.Name,
			Target:     target,
			Received:   amount,
			Remaining:  floorZero(target.Sub(amount)),
			Percentage: cappedPercent(amount, target),
			IsMet:      amount.GreaterThanOrEqual(target),
		})
	}
	return lines, nil
}

// TrendSeries returns, for each of the last n calendar months oldest to
// newest, total income, total expense, and savings, plus the current
// month's category distribution for income and expense.
func (r *Reporter) TrendSeries(ctx context.Context, ownerID string, n int) (*Trends, error) {
	if n <= 0 {
		n = 6
	}

	now := r.now()
	trends := &Trends{}

	for i := n - 1; i >= 0; i-- {
		anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		income, err := r.monthTotal(ctx, ownerID, model.EntryKindIncome, anchor.Year(), anchor.Month())
		if err != nil {
			return nil, err
		}
		expense, err := r.monthTotal(ctx, ownerID, model.EntryKindExpense, anchor.Year(), anchor.Month())
		if err != nil {
			return nil, err
		}
		trends.Months = append(trends.Months, MonthTrend{
			Year:    anchor.Year(),
			Month:   anchor.Month(),
			Income:  income,
			Expense: expense,
			Savings: income.Sub(expense),
		})
	}

	incomeShares, err := r.monthShares(ctx, ownerID, model.EntryKindIncome, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	expenseShares, err := r.monthShares(ctx, ownerID, model.EntryKindExpense, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	trends.IncomeShares = incomeShares
	trends.ExpenseShares = expenseShares

	return trends, nil
}

// Overview composes the dashboard aggregates. K most recent entries are
// merged across all three journal kinds, date descending.
func (r *Reporter) Overview(ctx context.Context, ownerID string, recentLimit int) (*Overview, error) {
	if recentLimit <= 0 {
		recentLimit = 10
	}

	accounts, err := r.store.AccountSummary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	incomeTotal, err := r.monthTotal(ctx, ownerID, model.EntryKindIncome, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	expenseTotal, err := r.monthTotal(ctx, ownerID, model.EntryKindExpense, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	targetTotal, err := r.allowanceTotal(ctx, ownerID, model.CategoryKindIncome)
	if err != nil {
		return nil, err
	}
	budgetTotal, err := r.allowanceTotal(ctx, ownerID, model.CategoryKindExpense)
	if err != nil {
		return nil, err
	}

	recent, err := r.store.ListEntries(ctx, ownerID, service.EntryFilter{Limit: recentLimit})
	if err != nil {
		return nil, err
	}

	return &Overview{
		Accounts:     accounts,
		IncomeTotal:  incomeTotal,
		TargetTotal:  targetTotal,
		ExpenseTotal: expenseTotal,
		BudgetTotal:  budgetTotal,
		NetSavings:   incomeTotal.Sub(expenseTotal),
		Recent:       recent,
	}, nil
}

// monthEntries fetches all entries of one kind within the calendar month.
func (r *Reporter) monthEntries(ctx context.Context, ownerID string, kind model.EntryKind, year int, month time.Month) ([]model.Entry, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return r.store.ListEntries(ctx, ownerID, service.EntryFilter{
		Kind:  kind,
		Start: &start,
		End:   &end,
	})
}

// monthCategorySums aggregates a month's entries of one kind per category.
// Amounts are stored as decimal strings, so summation happens here rather
// than in SQL, which would coerce them to floats.
func (r *Reporter) monthCategorySums(ctx context.Context, ownerID string, kind model.EntryKind, year int, month time.Month) (map[string]decimal.Decimal, error) {
	entries, err := r.monthEntries(ctx, ownerID, kind, year, month)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal)
	for i := range entries {
		entry := &entries[i]
		sums[entry.CategoryID] = sums[entry.CategoryID].Add(entry.Amount)
	}
	return sums, nil
}

func (r *Reporter) monthTotal(ctx context.Context, ownerID string, kind model.EntryKind, year int, month time.Month) (decimal.Decimal, error) {
	entries, err := r.monthEntries(ctx, ownerID, kind, year, month)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range entries {
		total = total.Add(entries[i].Amount)
	}
	return total, nil
}

// monthShares computes each category's percentage share of the month's
// total for one kind. Shares are zero when the total is zero.
func (r *Reporter) monthShares(ctx context.Context, ownerID string, kind model.EntryKind, year int, month time.Month) ([]CategoryShare, error) {
	sums, err := r.monthCategorySums(ctx, ownerID, kind, year, month)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, amount := range sums {
		total = total.Add(amount)
	}

	var shares []CategoryShare
	for categoryID, amount := range sums {
		category, getErr := r.store.GetCategory(ctx, ownerID, categoryID)
		if getErr != nil {
			return nil, getErr
		}
		shares = append(shares, CategoryShare{
			CategoryID: categoryID,
			Name:       category.Name,
			Amount:     amount,
			Share:      percent(amount, total),
		})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Name < shares[j].Name })
	return shares, nil
}

func (r *Reporter) allowanceTotal(ctx context.Context, ownerID string, kind model.CategoryKind) (decimal.Decimal, error) {
	categories, err := r.store.ListCategories(ctx, ownerID, kind)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range categories {
		if categories[i].Allowance != nil {
			total = total.Add(*categories[i].Allowance)
		}
	}
	return total, nil
}

func entryKindFor(kind model.CategoryKind) model.EntryKind {
	if kind == model.CategoryKindIncome {
		return model.EntryKindIncome
	}
	return model.EntryKindExpense
}

// percent computes part/total*100 rounded to two decimals, half away from
// zero, or zero when the total is zero. The same rounding applies to every
// percentage the reporter emits.
func percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Round(2)
}

// floorZero clamps negative remainders to zero.
func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// cappedPercent is percent clamped to 100.
func cappedPercent(part, total decimal.Decimal) decimal.Decimal {
	p := percent(part, total)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
