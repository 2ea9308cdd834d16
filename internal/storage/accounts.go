package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// CreateAccount inserts a new account row.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	return s.createAccountTx(ctx, s.db, account)
}

func (s *SQLiteStorage) createAccountTx(ctx context.Context, q querier, account *model.Account) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_id, name, type, balance, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OwnerID,
		account.Name,
		string(account.Type),
		account.Balance.String(),
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	slog.Info("created account",
		"id", account.ID,
		"type", account.Type,
		"balance", account.Balance.String())
	return nil
}

// GetAccount returns the account with the given id, owned by ownerID.
// Missing and not-owned accounts are indistinguishable.
func (s *SQLiteStorage) GetAccount(ctx context.Context, ownerID, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccountTx(ctx, s.db, ownerID, id)
}

func (s *SQLiteStorage) getAccountTx(ctx context.Context, q querier, ownerID, id string) (*model.Account, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, owner_id, name, type, balance, is_active, created_at, updated_at
		FROM accounts
		WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	return account, nil
}

// ListAccounts returns every account for the owner, active ones first.
func (s *SQLiteStorage) ListAccounts(ctx context.Context, ownerID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listAccountsTx(ctx, s.db, ownerID)
}

func (s *SQLiteStorage) listAccountsTx(ctx context.Context, q querier, ownerID string) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner_id, name, type, balance, is_active, created_at, updated_at
		FROM accounts
		WHERE owner_id = ?
		ORDER BY is_active DESC, name`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccountRows(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan account: %w", scanErr)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateAccount persists the account's name and active flag. Balance is
// deliberately not touched here; use UpdateAccountBalance inside a
// transaction together with the journal row that explains the change.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	return s.updateAccountTx(ctx, s.db, account)
}

func (s *SQLiteStorage) updateAccountTx(ctx context.Context, q querier, account *model.Account) error {
	account.UpdatedAt = time.Now().UTC()

	result, err := q.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		account.Name,
		account.IsActive,
		account.UpdatedAt,
		account.ID,
		account.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NewNotFound("account", account.ID)
	}

	return nil
}

func (s *SQLiteStorage) UpdateAccountBalance(ctx context.Context, ownerID, id string, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateAccountBalanceTx(ctx, s.db, ownerID, id, balance)
}

func (s *SQLiteStorage) updateAccountBalanceTx(ctx context.Context, q querier, ownerID, id string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: negative balance", ErrInvalidAccount)
	}

	result, err := q.ExecContext(ctx, `
		UPDATE accounts
		SET balance = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		balance.String(),
		time.Now().UTC(),
		id,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NewNotFound("account", id)
	}

	return nil
}

// AccountSummary groups active accounts by type with their combined balance.
func (s *SQLiteStorage) AccountSummary(ctx context.Context, ownerID string) ([]service.AccountTypeSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.accountSummaryTx(ctx, s.db, ownerID)
}

func (s *SQLiteStorage) accountSummaryTx(ctx context.Context, q querier, ownerID string) ([]service.AccountTypeSummary, error) {
	// Balances are stored as decimal strings, so the grouping happens in
	// Go rather than with SQL SUM, which would coerce them to floats.
	accounts, err := s.listAccountsTx(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}

	totals := make(map[model.AccountType]*service.AccountTypeSummary)
	var order []model.AccountType
	for i := range accounts {
		account := &accounts[i]
		if !account.IsActive {
			continue
		}
		summary, ok := totals[account.Type]
		if !ok {
			summary = &service.AccountTypeSummary{Type: account.Type, Balance: decimal.Zero}
			totals[account.Type] = summary
			order = append(order, account.Type)
		}
		summary.Balance = summary.Balance.Add(account.Balance)
		summary.Count++
	}

	summaries := make([]service.AccountTypeSummary, 0, len(order))
	for _, accountType := range order {
		summaries = append(summaries, *totals[accountType])
	}
	return summaries, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		account    model.Account
		accType    string
		balanceStr string
	)
	if err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.Name,
		&accType,
		&balanceStr,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}

	balance, err := scanDecimal(balanceStr)
	if err != nil {
		return nil, err
	}
	account.Type = model.AccountType(accType)
	account.Balance = balance
	return &account, nil
}

func scanAccountRows(rows *sql.Rows) (*model.Account, error) {
	return scanAccount(rows)
}
