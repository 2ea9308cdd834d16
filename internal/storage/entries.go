package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// CreateEntry inserts a journal row. The ledger engine calls this inside a
// transaction together with the balance update(s) the row implies.
func (s *SQLiteStorage) CreateEntry(ctx context.Context, entry *model.Entry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	return s.createEntryTx(ctx, s.db, entry)
}

func (s *SQLiteStorage) createEntryTx(ctx context.Context, q querier, entry *model.Entry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO entries (id, owner_id, kind, account_id, counter_account_id, category_id,
			amount, entry_date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OwnerID,
		string(entry.Kind),
		entry.AccountID,
		nullString(entry.CounterAccountID),
		nullString(entry.CategoryID),
		entry.Amount.String(),
		entry.Date,
		entry.Description,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	slog.Debug("created journal entry",
		"id", entry.ID,
		"kind", entry.Kind,
		"amount", entry.Amount.String())
	return nil
}

// GetEntry returns the journal row with the given id, owned by ownerID.
func (s *SQLiteStorage) GetEntry(ctx context.Context, ownerID, id string) (*model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getEntryTx(ctx, s.db, ownerID, id)
}

func (s *SQLiteStorage) getEntryTx(ctx context.Context, q querier, ownerID, id string) (*model.Entry, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, owner_id, kind, account_id, counter_account_id, category_id,
			amount, entry_date, description, created_at, updated_at
		FROM entries
		WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFound("entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entry: %w", err)
	}

	return entry, nil
}

// UpdateEntry rewrites an amendable journal row in place.
func (s *SQLiteStorage) UpdateEntry(ctx context.Context, entry *model.Entry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	return s.updateEntryTx(ctx, s.db, entry)
}

func (s *SQLiteStorage) updateEntryTx(ctx context.Context, q querier, entry *model.Entry) error {
	entry.UpdatedAt = time.Now().UTC()

	result, err := q.ExecContext(ctx, `
		UPDATE entries
		SET account_id = ?, category_id = ?, amount = ?, entry_date = ?, description = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		entry.AccountID,
		nullString(entry.CategoryID),
		entry.Amount.String(),
		entry.Date,
		entry.Description,
		entry.UpdatedAt,
		entry.ID,
		entry.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NewNotFound("entry", entry.ID)
	}

	return nil
}

// DeleteEntry removes a journal row. The ledger engine reverses the row's
// balance effect in the same transaction, so the ledger invariant holds
// over the rows that remain.
func (s *SQLiteStorage) DeleteEntry(ctx context.Context, ownerID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteEntryTx(ctx, s.db, ownerID, id)
}

func (s *SQLiteStorage) deleteEntryTx(ctx context.Context, q querier, ownerID, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		DELETE FROM entries
		WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.NewNotFound("entry", id)
	}

	return nil
}

// ListEntries returns journal rows matching the filter, newest first.
func (s *SQLiteStorage) ListEntries(ctx context.Context, ownerID string, filter service.EntryFilter) ([]model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listEntriesTx(ctx, s.db, ownerID, filter)
}

func (s *SQLiteStorage) listEntriesTx(ctx context.Context, q querier, ownerID string, filter service.EntryFilter) ([]model.Entry, error) {
	query := `
		SELECT id, owner_id, kind, account_id, counter_account_id, category_id,
			amount, entry_date, description, created_at, updated_at
		FROM entries
		WHERE owner_id = ?`
	args := []any{ownerID}

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.AccountID != "" {
		query += ` AND (account_id = ? OR counter_account_id = ?)`
		args = append(args, filter.AccountID, filter.AccountID)
	}
	if filter.Start != nil {
		query += ` AND entry_date >= ?`
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		query += ` AND entry_date < ?`
		args = append(args, *filter.End)
	}

	query += ` ORDER BY entry_date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", scanErr)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	var (
		entry          model.Entry
		kind           string
		counterAccount sql.NullString
		category       sql.NullString
		amountStr      string
		description    sql.NullString
	)
	if err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&kind,
		&entry.AccountID,
		&counterAccount,
		&category,
		&amountStr,
		&entry.Date,
		&description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}

	amount, err := scanDecimal(amountStr)
	if err != nil {
		return nil, err
	}
	entry.Kind = model.EntryKind(kind)
	entry.CounterAccountID = counterAccount.String
	entry.CategoryID = category.String
	entry.Description = description.String
	entry.Amount = amount
	return &entry, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
