// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common application errors. The four ledger error classes are terminal:
// the engine never retries a rejected mutation on the caller's behalf.
var (
	// ErrNotFound covers records that are missing or not owned by the
	// caller; the two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers client mistakes: same-account transfer,
	// non-positive amount, inactive account or category, dangling reference.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance means a debit would take an account below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrStorage wraps unclassified storage failures; its detail never
	// reaches the client.
	ErrStorage = errors.New("storage error")

	// ErrMissingConfig and ErrInvalidConfig cover configuration problems.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NotFoundError identifies a record the caller cannot see, either because
// it does not exist or because it belongs to someone else.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFound creates a NotFoundError for the given resource and id.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError carries a client-facing reason for rejecting a request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidation creates a ValidationError with a formatted reason.
func NewValidation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientBalanceError reports a debit that exceeds available funds.
type InsufficientBalanceError struct {
	AccountID string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on account %s: required %s, available %s",
		e.AccountID, e.Required, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// NewInsufficientBalance creates an InsufficientBalanceError.
func NewInsufficientBalance(accountID string, required, available decimal.Decimal) error {
	return &InsufficientBalanceError{
		AccountID: accountID,
		Required:  required,
		Available: available,
	}
}

// StorageError hides storage internals behind an opaque message while
// preserving the cause for logs.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s", e.Op)
}

func (e *StorageError) Unwrap() error {
	return ErrStorage
}

// Cause returns the underlying storage error for logging.
func (e *StorageError) Cause() error {
	return e.Err
}

// NewStorageError wraps err as an opaque storage failure.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsClientError reports whether err should be shown to the caller with its
// explanation. Storage errors stay opaque.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientBalance)
}
