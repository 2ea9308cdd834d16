package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Record and manage income entries",
	}

	cmd.AddCommand(addIncomeCmd())
	cmd.AddCommand(editIncomeCmd())
	cmd.AddCommand(deleteIncomeCmd())
	cmd.AddCommand(listIncomeCmd())

	return cmd
}

func addIncomeCmd() *cobra.Command {
	var (
		account     string
		category    string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an income entry",
		Long:  `Record an income entry. The amount is credited to the account atomically with the journal row.`,
		Args:  cobra.ExactArgs(1),
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

			entry, err := ledger.New(store).CreateIncome(ctx, owner, account, category, amount, entryDate, description)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded income of %s (entry %s)", entry.Amount.StringFixed(2), entry.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account id to credit")
	cmd.Flags().StringVar(&category, "category", "", "income category id")
	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func editIncomeCmd() *cobra.Command {
	var (
		account     string
		category    string
		amount      string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Amend an income entry",
		Long: `Amend an income entry. Moving the entry to another account reverses the
old account's credit in full and applies the new amount to the new account.`,
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

			entry, err := ledger.New(store).UpdateIncome(ctx, owner, args[0], changes)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated income entry %s", entry.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "move the entry to this account id")
	cmd.Flags().StringVar(&category, "category", "", "new income category id")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&date, "date", "", "new entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func deleteIncomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an income entry",
		Long:  `Delete an income entry and debit its account by the entry amount.`,
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

			if err := ledger.New(store).DeleteIncome(ctx, owner, args[0]); err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess("Income entry deleted"))
			return nil
		},
	}
}

func listIncomeCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List income entries, newest first",
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
				Kind:  model.EntryKindIncome,
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
