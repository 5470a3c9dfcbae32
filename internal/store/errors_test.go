package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("lookup: %w", ErrNotFound), expected: true},
		{name: "ErrConfigNotFound", err: ErrConfigNotFound, expected: true},
		{name: "ErrInstanceNotFound", err: ErrInstanceNotFound, expected: true},
		{name: "ErrEnvironmentNotFound", err: ErrEnvironmentNotFound, expected: true},
		{name: "ErrProjectNotFound", err: ErrProjectNotFound, expected: true},
		{name: "ErrOperatorNotFound", err: ErrOperatorNotFound, expected: true},
		{name: "ErrConfigKeyExists", err: ErrConfigKeyExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrConfigKeyExists", err: ErrConfigKeyExists, expected: true},
		{name: "wrapped ErrProjectExists", err: fmt.Errorf("create: %w", ErrProjectExists), expected: true},
		{name: "ErrConfigNotFound", err: ErrConfigNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEntitySpecificErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrConfigNotFound, ErrInstanceNotFound))
	assert.False(t, errors.Is(ErrInstanceNotFound, ErrConfigNotFound))
	assert.Equal(t, "entity not found: config instance", ErrInstanceNotFound.Error())
}

func TestStoreError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("config", "create", "database error", originalErr)

	assert.Equal(t, "create operation on config failed: database error: database connection failed", storeErr.Error())
	assert.True(t, errors.Is(storeErr, originalErr))

	var target *StoreError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", storeErr), &target))
	assert.Equal(t, "config", target.Entity)
}

func TestStoreError_ErrorWithoutWrappedError(t *testing.T) {
	storeErr := &StoreError{
		Entity:    "instance",
		Operation: "upsert",
		Message:   "validation failed",
	}

	assert.Equal(t, "upsert operation on instance failed: validation failed", storeErr.Error())
	assert.Nil(t, storeErr.Unwrap())
}
