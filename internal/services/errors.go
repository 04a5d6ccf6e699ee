package services

import (
	"errors"
	"fmt"

	"trading-contests/internal/database"
)

// ValidationError rejects an operation because the input or current state
// makes it impossible. Retrying the same call will fail the same way.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
	}
	return "validation failed: " + e.Reason
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError signals a lost race on shared state (optimistic lock miss,
// duplicate key, status changed underneath). Safe to retry the enclosing
// transaction.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

// Unwrap ties conflicts into the transaction retry loop.
func (e *ConflictError) Unwrap() error {
	return database.ErrTxConflict
}

func NewConflictError(resource, reason string) error {
	return &ConflictError{Resource: resource, Reason: reason}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ExternalDependencyError wraps a failure of an outside system (price feed,
// payment provider). The underlying error is preserved for unwrapping.
type ExternalDependencyError struct {
	Dependency string
	Err        error
}

func (e *ExternalDependencyError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}

func (e *ExternalDependencyError) Unwrap() error {
	return e.Err
}

func NewExternalDependencyError(dependency string, err error) error {
	return &ExternalDependencyError{Dependency: dependency, Err: err}
}

// TransactionAbortError is raised by the transactional unit of work when a
// closure keeps conflicting and its retries run out.
type TransactionAbortError = database.TransactionAbortError

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsExternalDependency(err error) bool {
	var ee *ExternalDependencyError
	return errors.As(err, &ee)
}

func IsTransactionAbort(err error) bool {
	var te *TransactionAbortError
	return errors.As(err, &te)
}
