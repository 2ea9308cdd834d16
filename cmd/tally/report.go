package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summaries, budgets, targets, and trends",
	}

	cmd.AddCommand(monthReportCmd())
	cmd.AddCommand(budgetReportCmd())
	cmd.AddCommand(targetsReportCmd())
	cmd.AddCommand(trendsReportCmd())
	cmd.AddCommand(overviewReportCmd())

	return cmd
}

func monthReportCmd() *cobra.Command {
	var (
		kind  string
		year  int
		month int
	)

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Monthly totals by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			now := time.Now().UTC()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}

			summary, err := report.New(store).MonthlySummary(ctx, owner, year, time.Month(month), model.CategoryKind(kind))
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s %d-%02d", summary.Kind, summary.Year, summary.Month)))
			if len(summary.Categories) == 0 {
				fmt.Println(cli.FormatInfo("No entries in this month."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, cli.TableHeaderStyle.Render("Category")+"\t"+
				cli.TableHeaderStyle.Render("Amount")+"\t"+
				cli.TableHeaderStyle.Render("Allowance"))
			for _, line := range summary.Categories {
				allowance := cli.SubtleStyle.Render("(none)")
				if line.Allowance != nil {
					allowance = line.Allowance.StringFixed(2)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", line.Name, line.Amount.StringFixed(2), allowance)
			}
			fmt.Fprintf(w, "%s\t%s\t\n", cli.BoldStyle.Render("Total"), summary.Total.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "expense", "summary kind (income, expense)")
	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	return cmd
}

func budgetReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Current-month spending against expense budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			lines, err := report.New(store).BudgetStatus(ctx, owner)
			if err != nil {
				return presentError(err)
			}

			if len(lines) == 0 {
				fmt.Println(cli.FormatInfo("No budgeted expense categories."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, cli.TableHeaderStyle.Render("Category")+"\t"+
				cli.TableHeaderStyle.Render("Budget")+"\t"+
				cli.TableHeaderStyle.Render("Spent")+"\t"+
				cli.TableHeaderStyle.Render("Remaining")+"\t"+
				cli.TableHeaderStyle.Render("Used"))
			for _, line := range lines {
				used := line.Percentage.StringFixed(0) + "%"
				if line.IsOverBudget {
					used = cli.ErrorStyle.Render(used + " over")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					line.Name, line.Budget.StringFixed(2), line.Spent.StringFixed(2),
					line.Remaining.StringFixed(2), used)
			}
			return nil
		},
	}
}

func targetsReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Current-month income against targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			lines, err := report.New(store).TargetProgress(ctx, owner)
			if err != nil {
				return presentError(err)
			}

			if len(lines) == 0 {
				fmt.Println(cli.FormatInfo("No income categories with targets."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, cli.TableHeaderStyle.Render("Category")+"\t"+
				cli.TableHeaderStyle.Render("Target")+"\t"+
				cli.TableHeaderStyle.Render("Received")+"\t"+
				cli.TableHeaderStyle.Render("Remaining")+"\t"+
				cli.TableHeaderStyle.Render("Progress"))
			for _, line := range lines {
				progress := line.Percentage.StringFixed(0) + "%"
				if line.IsMet {
					progress = cli.SuccessStyle.Render(progress + " met")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					line.Name, line.Target.StringFixed(2), line.Received.StringFixed(2),
					line.Remaining.StringFixed(2), progress)
			}
			return nil
		},
	}
}

func trendsReportCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Income, expense, and savings over recent months",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			trends, err := report.New(store).TrendSeries(ctx, owner, months)
			if err != nil {
				return presentError(err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, cli.TableHeaderStyle.Render("Month")+"\t"+
				cli.TableHeaderStyle.Render("Income")+"\t"+
				cli.TableHeaderStyle.Render("Expense")+"\t"+
				cli.TableHeaderStyle.Render("Savings"))
			for _, m := range trends.Months {
				fmt.Fprintf(w, "%d-%02d\t%s\t%s\t%s\n",
					m.Year, m.Month, m.Income.StringFixed(2), m.Expense.StringFixed(2), m.Savings.StringFixed(2))
			}
			_ = w.Flush()

			printShares("Income by category (this month)", trends.IncomeShares)
			printShares("Expenses by category (this month)", trends.ExpenseShares)
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 6, "number of months to include")
	return cmd
}

func printShares(title string, shares []report.CategoryShare) {
	if len(shares) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(cli.FormatTitle(title))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	for _, share := range shares {
		fmt.Fprintf(w, "%s\t%s\t%s%%\n", share.Name, share.Amount.StringFixed(2), share.Share.StringFixed(1))
	}
}

func overviewReportCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Dashboard: balances, month totals, and recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			overview, err := report.New(store).Overview(ctx, owner, recent)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatTitle("Accounts"))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, summary := range overview.Accounts {
				fmt.Fprintf(w, "%s\t%d\t%s\n", summary.Type, summary.Count, summary.Balance.StringFixed(2))
			}
			_ = w.Flush()

			fmt.Println()
			fmt.Println(cli.FormatTitle("This month"))
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Income\t%s\tof target %s\n", overview.IncomeTotal.StringFixed(2), overview.TargetTotal.StringFixed(2))
			fmt.Fprintf(w, "Expenses\t%s\tof budget %s\n", overview.ExpenseTotal.StringFixed(2), overview.BudgetTotal.StringFixed(2))
			fmt.Fprintf(w, "%s\t%s\t\n", cli.BoldStyle.Render("Net savings"), overview.NetSavings.StringFixed(2))
			_ = w.Flush()

			if len(overview.Recent) > 0 {
				fmt.Println()
				fmt.Println(cli.FormatTitle("Recent entries"))
				printEntries(overview.Recent)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 10, "number of recent entries to show")
	return cmd
}
