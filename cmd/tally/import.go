package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/ledger"
)

// importColumns is the expected CSV header. The target column holds the
// category id for income and expense rows, and the destination account id
// for transfer rows.
var importColumns = []string{"kind", "date", "amount", "account", "target", "description"}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk-import journal entries from a CSV file",
		Long: `Bulk-import journal entries from a CSV file with the header

    kind,date,amount,account,target,description

where kind is income, expense, or transfer, date is YYYY-MM-DD, and target
is the category id (income, expense) or the destination account id
(transfer). Each row goes through the same admission checks as the single
commands. A row that fails is reported and skipped; it never lands
half-applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			owner, err := requireOwner()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = file.Close() }()

			rows, err := readImportRows(file)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println(cli.FormatInfo("Nothing to import."))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := ledger.New(store)
			bar := progressbar.NewOptions(len(rows),
				progressbar.OptionSetDescription("Importing entries"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			imported := 0
			var failures []string
			for _, row := range rows {
				if err := applyImportRow(cmd, engine, owner, row); err != nil {
					failures = append(failures, fmt.Sprintf("line %d: %v", row.line, err))
				} else {
					imported++
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d entries", imported, len(rows))))
			for _, failure := range failures {
				fmt.Println(cli.FormatWarning("skipped " + failure))
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d rows failed", len(failures))
			}
			return nil
		},
	}

	return cmd
}

type importRow struct {
	kind        string
	date        string
	amount      string
	account     string
	target      string
	description string
	line        int
}

// readImportRows parses and header-checks the CSV without touching storage,
// so a malformed file is rejected before any row is applied.
func readImportRows(r io.Reader) ([]importRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(importColumns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, column := range importColumns {
		if header[i] != column {
			return nil, fmt.Errorf("unexpected CSV header %q (expected %q)", header[i], column)
		}
	}

	var rows []importRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		rows = append(rows, importRow{
			kind:        record[0],
			date:        record[1],
			amount:      record[2],
			account:     record[3],
			target:      record[4],
			description: record[5],
			line:        line,
		})
	}
	return rows, nil
}

func applyImportRow(cmd *cobra.Command, engine *ledger.Ledger, owner string, row importRow) error {
	ctx := cmd.Context()

	amount, err := parseAmount(row.amount)
	if err != nil {
		return err
	}
	date, err := parseDate(row.date)
	if err != nil {
		return err
	}

	switch row.kind {
	case "income":
		_, err = engine.CreateIncome(ctx, owner, row.account, row.target, amount, date, row.description)
	case "expense":
		_, err = engine.CreateExpense(ctx, owner, row.account, row.target, amount, date, row.description)
	case "transfer":
		_, err = engine.CreateTransfer(ctx, owner, row.account, row.target, amount, date, row.description)
	default:
		return fmt.Errorf("unknown kind %q", row.kind)
	}
	return err
}
