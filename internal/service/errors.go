package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/confhub/internal/service/identity"
)

// Sentinel errors for the expected failure kinds of the registry.
// The API layer maps each to an HTTP status.
var (
	// ErrPermissionDenied indicates the operator failed identity verification.
	ErrPermissionDenied = identity.ErrPermissionDenied

	// ErrProjectNotFound indicates the named project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrAlreadyExists indicates a config with the key already exists in any project.
	ErrAlreadyExists = errors.New("config already exists")

	// ErrConfigNotFound indicates no config has the given key.
	ErrConfigNotFound = errors.New("config not found")

	// ErrInstanceNotFound indicates no value exists for the exact
	// (config, environment, group) triple.
	ErrInstanceNotFound = errors.New("config instance not found")

	// ErrInvalidEnvironment indicates the environment name is not one of the known set.
	ErrInvalidEnvironment = errors.New("invalid environment")

	// ErrPrefixTooShort indicates a prefix query shorter than MinPrefixLength.
	ErrPrefixTooShort = errors.New("prefix is too short")

	// ErrInvalidKey indicates a config key that fails validation.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrInvalidValue indicates a value that does not satisfy the config's type.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrMissingKey indicates a read naming none of key, keys or prefix.
	ErrMissingKey = errors.New("key is null")

	// ErrAuditFailed indicates the audit entry for a mutation could not be written.
	ErrAuditFailed = errors.New("audit log append failed")
)

// DetailError pairs a sentinel error with a message that is safe to show
// to the caller.
type DetailError struct {
	Err     error
	Message string
}

// Error implements the error interface for DetailError.
func (e *DetailError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel so errors.Is works.
func (e *DetailError) Unwrap() error {
	return e.Err
}

func detail(sentinel error, format string, args ...any) error {
	return &DetailError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}

// RegistryError wraps unexpected failures with the operation that hit them.
type RegistryError struct {
	// Operation is the operation that failed (e.g., "create_config", "get_one")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for RegistryError.
func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("registry %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// NewRegistryError wraps err for operation. Errors that already carry a
// DetailError or RegistryError are returned unchanged.
func NewRegistryError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	var detailErr *DetailError
	if errors.As(err, &detailErr) {
		return err
	}

	var registryErr *RegistryError
	if errors.As(err, &registryErr) {
		return err
	}

	return &RegistryError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// SafeMessage returns the caller-safe message carried by err, if any.
func SafeMessage(err error) (string, bool) {
	var detailErr *DetailError
	if errors.As(err, &detailErr) {
		return detailErr.Message, true
	}
	return "", false
}
