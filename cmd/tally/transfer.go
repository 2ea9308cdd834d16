package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts",
	}

	cmd.AddCommand(addTransferCmd())
	cmd.AddCommand(deleteTransferCmd())
	cmd.AddCommand(listTransferCmd())

	return cmd
}

func addTransferCmd() *cobra.Command {
	var (
		from        string
		to          string
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Transfer between two accounts",
		Long: `Transfer an amount between two accounts. Both legs land in one step, so
no reader can ever observe the money in flight or counted twice.`,
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

			entry, err := ledger.New(store).CreateTransfer(ctx, owner, from, to, amount, entryDate, description)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Transferred %s (entry %s)", entry.Amount.StringFixed(2), entry.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source account id")
	cmd.Flags().StringVar(&to, "to", "", "destination account id")
	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func deleteTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transfer, reversing both legs",
		Long: `Delete a transfer entry. The amount moves back from the destination to the
source. The reversal is rejected if the destination no longer holds enough.`,
		Args: cobra.ExactArgs(1),
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

			if err := ledger.New(store).DeleteTransfer(ctx, owner, args[0]); err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess("Transfer deleted and reversed"))
			return nil
		},
	}
}

func listTransferCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfers, newest first",
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
				Kind:  model.EntryKindTransfer,
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
