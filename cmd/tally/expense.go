package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and manage expense entries",
	}

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(editExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())
	cmd.AddCommand(listExpenseCmd())

	return cmd
}

func addExpenseCmd() *cobra.Command {
	var (
		account     string
		category    string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense entry",
		Long: `Record an expense entry. The amount is debited from the account atomically
with the journal row. An expense that would drive the account negative is
rejected and nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			entryDate, err := parseDate(date)
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entry, err := ledger.New(store).CreateExpense(ctx, owner, account, category, amount, entryDate, description)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded expense of %s (entry %s)", entry.Amount.StringFixed(2), entry.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account id to debit")
	cmd.Flags().StringVar(&category, "category", "", "expense category id")
	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func editExpenseCmd() *cobra.Command {
	var (
		account     string
		category    string
		amount      string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Amend an expense entry",
		Long: `Amend an expense entry. The old debit is refunded and the new one applied
in a single step, so an amendment the account cannot cover is rejected
without touching any balance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}

			changes, err := entryChangesFromFlags(account, category, amount, date, description)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entry, err := ledger.New(store).UpdateExpense(ctx, owner, args[0], changes)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated expense entry %s", entry.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "move the entry to this account id")
	cmd.Flags().StringVar(&category, "category", "", "new expense category id")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&date, "date", "", "new entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense entry",
		Long:  `Delete an expense entry and refund its amount to the account.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := ledger.New(store).DeleteExpense(ctx, owner, args[0]); err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess("Expense entry deleted"))
			return nil
		},
	}
}

func listExpenseCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expense entries, newest first",
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

			entries, err := ledger.New(store).ListEntries(ctx, owner, service.EntryFilter{
				Kind:  model.EntryKindExpense,
				Limit: limit,
			})
			if err != nil {
				return presentError(err)
			}

			printEntries(entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}
