package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage monetary accounts",
		Long:  `Create, list, rename, and deactivate the accounts tracked by the ledger.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(updateAccountCmd())
	cmd.AddCommand(deactivateAccountCmd())
	cmd.AddCommand(accountBalanceCmd())
	cmd.AddCommand(accountSummaryCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
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

			accounts, err := ledger.New(store).ListAccounts(ctx, owner)
			if err != nil {
				return presentError(err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.FormatInfo("No accounts found. Use 'tally accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, cli.TableHeaderStyle.Render("ID")+"\t"+
				cli.TableHeaderStyle.Render("Name")+"\t"+
				cli.TableHeaderStyle.Render("Type")+"\t"+
				cli.TableHeaderStyle.Render("Balance")+"\t"+
				cli.TableHeaderStyle.Render("Active"))
			for i := range accounts {
				account := &accounts[i]
				active := "yes"
				if !account.IsActive {
					active = cli.SubtleStyle.Render("no")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					account.ID, account.Name, account.Type, account.Balance.StringFixed(2), active)
			}
			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		accountType    string
		initialBalance string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			balance, err := parseAmount(initialBalance)
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := ledger.New(store).CreateAccount(ctx, owner, args[0], model.AccountType(accountType), balance)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created %s account %q with balance %s (id %s)",
				account.Type, account.Name, account.Balance.StringFixed(2), account.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "spending", "account type (saving, spending, wallet, investment, business)")
	cmd.Flags().StringVar(&initialBalance, "balance", "0", "initial balance")
	return cmd
}

func updateAccountCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}
			if name == "" {
				return fmt.Errorf("nothing to update: pass --name")
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account, err := ledger.New(store).UpdateAccount(ctx, owner, args[0], ledger.AccountChanges{Name: &name})
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Renamed account %s to %q", account.ID, account.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new account name")
	return cmd
}

func deactivateAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate an account",
		Long:  `Soft-delete an account. Its balance and journal history are kept.`,
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

			if err := ledger.New(store).DeactivateAccount(ctx, owner, args[0]); err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess("Account deactivated"))
			return nil
		},
	}
}

func accountBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <id>",
		Short: "Show one account's current balance",
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

			balance, err := ledger.New(store).GetBalance(ctx, owner, args[0])
			if err != nil {
				return presentError(err)
			}

			fmt.Println(balance.StringFixed(2))
			return nil
		},
	}
}

func accountSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balances grouped by account type",
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

			summaries, err := ledger.New(store).AccountSummary(ctx, owner)
			if err != nil {
				return presentError(err)
			}

			if len(summaries) == 0 {
				fmt.Println(cli.FormatInfo("No active accounts."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, cli.TableHeaderStyle.Render("Type")+"\t"+
				cli.TableHeaderStyle.Render("Accounts")+"\t"+
				cli.TableHeaderStyle.Render("Balance"))
			for _, summary := range summaries {
				fmt.Fprintf(w, "%s\t%d\t%s\n", summary.Type, summary.Count, summary.Balance.StringFixed(2))
			}
			return nil
		},
	}
}
