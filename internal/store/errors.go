package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a config with the same key).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or
	// references an entity that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConfigNotFound indicates that the requested config does not exist.
	ErrConfigNotFound = fmt.Errorf("%w: config", ErrNotFound)

	// ErrInstanceNotFound indicates that no instance exists for the requested triple.
	ErrInstanceNotFound = fmt.Errorf("%w: config instance", ErrNotFound)

	// ErrEnvironmentNotFound indicates that the environment name is unknown.
	ErrEnvironmentNotFound = fmt.Errorf("%w: environment", ErrNotFound)

	// ErrProjectNotFound indicates that the requested project does not exist.
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	// ErrOperatorNotFound indicates that the operator is not registered.
	ErrOperatorNotFound = fmt.Errorf("%w: operator", ErrNotFound)

	// ErrConfigKeyExists indicates that a config with the given key already exists.
	ErrConfigKeyExists = fmt.Errorf("%w: config key", ErrDuplicate)

	// ErrProjectExists indicates that a project with the given name already exists.
	ErrProjectExists = fmt.Errorf("%w: project name", ErrDuplicate)

	// ErrOperatorExists indicates that an operator with the given ID already exists.
	ErrOperatorExists = fmt.Errorf("%w: operator", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "config", "instance")
	Operation string // The operation that failed (e.g., "create", "upsert")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
