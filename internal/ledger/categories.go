package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

// CategoryChanges describes a category amendment. Nil fields stay
// untouched; ClearAllowance removes the target/budget entirely.
type CategoryChanges struct {
	Name           *string
	Allowance      *decimal.Decimal
	Active         *bool
	ClearAllowance bool
}

// CreateCategory creates an income or expense category. The allowance is
// the monthly target for income categories and the monthly budget for
// expense categories; when present it must be positive.
func (l *Ledger) CreateCategory(ctx context.Context, ownerID, name string, kind model.CategoryKind, allowance *decimal.Decimal) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, common.NewValidation("category name cannot be empty")
	}
	if !model.ValidCategoryKind(kind) {
		return nil, common.NewValidation("unknown category kind %q", kind)
	}
	if allowance != nil && !allowance.IsPositive() {
		return nil, common.NewValidation("allowance must be positive, got %s", allowance)
	}

	existing, err := l.store.GetCategoryByName(ctx, ownerID, kind, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewValidation("category %q already exists", name)
	}

	category := &model.Category{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Kind:      kind,
		Allowance: allowance,
		IsActive:  true,
	}

	if err := l.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory returns a single category owned by the caller.
func (l *Ledger) GetCategory(ctx context.Context, ownerID, id string) (*model.Category, error) {
	return l.store.GetCategory(ctx, ownerID, id)
}

// ListCategories returns the owner's active categories of one kind.
func (l *Ledger) ListCategories(ctx context.Context, ownerID string, kind model.CategoryKind) ([]model.Category, error) {
	if !model.ValidCategoryKind(kind) {
		return nil, common.NewValidation("unknown category kind %q", kind)
	}
	return l.store.ListCategories(ctx, ownerID, kind)
}

// UpdateCategory amends a category's name, allowance, or active flag.
// Renames re-check name uniqueness within the owner and kind.
func (l *Ledger) UpdateCategory(ctx context.Context, ownerID, id string, changes CategoryChanges) (*model.Category, error) {
	category, err := l.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil && *changes.Name != category.Name {
		if strings.TrimSpace(*changes.Name) == "" {
			return nil, common.NewValidation("category name cannot be empty")
		}
		existing, lookupErr := l.store.GetCategoryByName(ctx, ownerID, category.Kind, *changes.Name)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil && existing.ID != category.ID {
			return nil, common.NewValidation("category %q already exists", *changes.Name)
		}
		category.Name = *changes.Name
	}

	switch {
	case changes.ClearAllowance:
		category.Allowance = nil
	case changes.Allowance != nil:
		if !changes.Allowance.IsPositive() {
			return nil, common.NewValidation("allowance must be positive, got %s", changes.Allowance)
		}
		category.Allowance = changes.Allowance
	}

	if changes.Active != nil {
		category.IsActive = *changes.Active
	}

	if err := l.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeactivateCategory soft-deletes a category; existing entries keep
// referencing it.
func (l *Ledger) DeactivateCategory(ctx context.Context, ownerID, id string) error {
	active := false
	_, err := l.UpdateCategory(ctx, ownerID, id, CategoryChanges{Active: &active})
	return err
}
