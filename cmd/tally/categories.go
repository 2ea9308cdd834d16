package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
		Long:  `Create, list, rename, and deactivate categories, with optional monthly budgets (expense) and targets (income).`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deactivateCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active categories of one kind",
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

			categories, err := ledger.New(store).ListCategories(ctx, owner, model.CategoryKind(kind))
			if err != nil {
				return presentError(err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.FormatInfo("No categories found. Use 'tally categories add' to create one."))
				return nil
			}

			allowanceHeader := "Budget"
			if model.CategoryKind(kind) == model.CategoryKindIncome {
				allowanceHeader = "Target"
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, cli.TableHeaderStyle.Render("ID")+"\t"+
				cli.TableHeaderStyle.Render("Name")+"\t"+
				cli.TableHeaderStyle.Render(allowanceHeader))
			for i := range categories {
				category := &categories[i]
				allowance := cli.SubtleStyle.Render("(none)")
				if category.Allowance != nil {
					allowance = category.Allowance.StringFixed(2)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", category.ID, category.Name, allowance)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "expense", "category kind (income, expense)")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		kind      string
		allowance string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new category",
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

			var allowancePtr *decimal.Decimal
			if allowance != "" {
				amount, parseErr := parseAmount(allowance)
				if parseErr != nil {
					return parseErr
				}
				allowancePtr = &amount
			}

			category, err := ledger.New(store).CreateCategory(ctx, owner, args[0], model.CategoryKind(kind), allowancePtr)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created %s category %q (id %s)", category.Kind, category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "expense", "category kind (income, expense)")
	cmd.Flags().StringVar(&allowance, "allowance", "", "monthly budget (expense) or target (income)")
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		name           string
		allowance      string
		clearAllowance bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or change its allowance",
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

			changes := ledger.CategoryChanges{ClearAllowance: clearAllowance}
			if name != "" {
				changes.Name = &name
			}
			if allowance != "" {
				amount, parseErr := parseAmount(allowance)
				if parseErr != nil {
					return parseErr
				}
				changes.Allowance = &amount
			}
			if changes.Name == nil && changes.Allowance == nil && !changes.ClearAllowance {
				return fmt.Errorf("nothing to update: pass --name, --allowance, or --clear-allowance")
			}

			category, err := ledger.New(store).UpdateCategory(ctx, owner, args[0], changes)
			if err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %q", category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new category name")
	cmd.Flags().StringVar(&allowance, "allowance", "", "monthly budget (expense) or target (income)")
	cmd.Flags().BoolVar(&clearAllowance, "clear-allowance", false, "remove the budget/target")
	return cmd
}

func deactivateCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a category",
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

			if err := ledger.New(store).DeactivateCategory(ctx, owner, args[0]); err != nil {
				return presentError(err)
			}

			fmt.Println(cli.FormatSuccess("Category deactivated"))
			return nil
		},
	}
}
