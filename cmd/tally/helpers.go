package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/ledger"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tally/tally.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// requireOwner returns the acting owner id from config or flags.
func requireOwner() (string, error) {
	owner := viper.GetString("owner")
	if owner == "" {
		return "", fmt.Errorf("%w: owner (set --owner or the 'owner' config key)", common.ErrMissingConfig)
	}
	return owner, nil
}

// parseAmount parses a decimal money amount from the command line.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// parseDate parses a YYYY-MM-DD date, defaulting to today when empty.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return date, nil
}

// entryChangesFromFlags turns the shared edit-command flags into the
// change set the engine understands. Empty flags mean "leave alone".
func entryChangesFromFlags(account, category, amount, date, description string) (ledger.EntryChanges, error) {
	var changes ledger.EntryChanges

	if account != "" {
		changes.AccountID = &account
	}
	if category != "" {
		changes.CategoryID = &category
	}
	if amount != "" {
		parsed, err := parseAmount(amount)
		if err != nil {
			return ledger.EntryChanges{}, err
		}
		changes.Amount = &parsed
	}
	if date != "" {
		parsed, err := parseDate(date)
		if err != nil {
			return ledger.EntryChanges{}, err
		}
		changes.Date = &parsed
	}
	if description != "" {
		changes.Description = &description
	}
	return changes, nil
}

// printEntries renders journal entries as a table, newest first.
func printEntries(entries []model.Entry) {
	if len(entries) == 0 {
		fmt.Println(cli.FormatInfo("No entries found."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintln(w, cli.TableHeaderStyle.Render("ID")+"\t"+
		cli.TableHeaderStyle.Render("Date")+"\t"+
		cli.TableHeaderStyle.Render("Kind")+"\t"+
		cli.TableHeaderStyle.Render("Amount")+"\t"+
		cli.TableHeaderStyle.Render("Account")+"\t"+
		cli.TableHeaderStyle.Render("Description"))
	for i := range entries {
		entry := &entries[i]
		accountCol := entry.AccountID
		if entry.IsTransfer() {
			accountCol = entry.AccountID + " → " + entry.CounterAccountID
		}
		description := entry.Description
		if description == "" {
			description = cli.SubtleStyle.Render("(none)")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.ID, entry.Date.Format("2006-01-02"), entry.Kind,
			entry.Amount.StringFixed(2), accountCol, description)
	}
}

// presentError keeps client-facing rejections intact and hides storage
// internals behind an opaque message.
func presentError(err error) error {
	if err == nil {
		return nil
	}
	if common.IsClientError(err) {
		return err
	}
	common.LogError(err, "internal error", nil)
	return fmt.Errorf("internal error, see logs for details")
}
