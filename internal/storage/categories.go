package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// CreateCategory inserts a new category. Names are unique per owner per
// kind; a collision surfaces as a validation error.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.createCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q querier, category *model.Category) error {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, kind, allowance, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		category.ID,
		category.OwnerID,
		category.Name,
		string(category.Kind),
		allowanceValue(category),
		category.IsActive,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return common.NewValidation("category %q already exists", category.Name)
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}

	slog.Info("created category", "id", category.ID, "name", category.Name, "kind", category.Kind)
	return nil
}

// GetCategory returns the category with the given id, owned by ownerID.
func (s *SQLiteStorage) GetCategory(ctx context.Context, ownerID, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryTx(ctx, s.db, ownerID, id)
}

func (s *SQLiteStorage) getCategoryTx(ctx context.Context, q querier, ownerID, id string) (*model.Category, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, owner_id, name, kind, allowance, is_active, created_at, updated_at
		FROM categories
		WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)

	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return category, nil
}

// GetCategoryByName returns the category with the given name and kind, or
// nil when no such category exists.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, ownerID string, kind model.CategoryKind, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryByNameTx(ctx, s.db, ownerID, kind, name)
}

func (s *SQLiteStorage) getCategoryByNameTx(ctx context.Context, q querier, ownerID string, kind model.CategoryKind, name string) (*model.Category, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, owner_id, name, kind, allowance, is_active, created_at, updated_at
		FROM categories
		WHERE owner_id = ? AND kind = ? AND name = ?`,
		ownerID, string(kind), name,
	)

	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return category, nil
}

// ListCategories returns all active categories of the given kind.
func (s *SQLiteStorage) ListCategories(ctx context.Context, ownerID string, kind model.CategoryKind) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCategoriesTx(ctx, s.db, ownerID, kind)
}

func (s *SQLiteStorage) listCategoriesTx(ctx context.Context, q querier, ownerID string, kind model.CategoryKind) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner_id, name, kind, allowance, is_active, created_at, updated_at
		FROM categories
		WHERE owner_id = ? AND kind = ? AND is_active = 1
		ORDER BY name`,
		ownerID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// UpdateCategory persists name, allowance, and active flag changes.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.updateCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) updateCategoryTx(ctx context.Context, q querier, category *model.Category) error {
	category.UpdatedAt = time.Now().UTC()

	result, err := q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, allowance = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		category.Name,
		allowanceValue(category),
		category.IsActive,
		category.UpdatedAt,
		category.ID,
		category.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return common.NewValidation("category %q already exists", category.Name)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return common.NewNotFound("category", category.ID)
	}

	return nil
}

func allowanceValue(category *model.Category) any {
	if category.Allowance == nil {
		return nil
	}
	return category.Allowance.String()
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		category  model.Category
		kind      string
		allowance sql.NullString
	)
	if err := row.Scan(
		&category.ID,
		&category.OwnerID,
		&category.Name,
		&kind,
		&allowance,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}

	category.Kind = model.CategoryKind(kind)
	if allowance.Valid {
		amount, err := scanDecimal(allowance.String)
		if err != nil {
			return nil, err
		}
		category.Allowance = &amount
	}
	return &category, nil
}

// isUniqueViolation detects sqlite unique constraint failures.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
