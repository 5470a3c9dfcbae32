package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// OperationType classifies an operation log entry.
type OperationType string

// Operation log types
const (
	OperationConfigAdd  OperationType = "Config_Add"
	OperationConfigEdit OperationType = "Config_Edit"
)

// Operation log validation errors
var (
	ErrEmptyOperationMessage = errors.New("operation log message cannot be empty")
)

// OperationLog is an immutable record of one successful mutation.
// ProjectID is nil for edits that do not reference a project.
type OperationLog struct {
	ID         uuid.UUID     `json:"id"`
	Type       OperationType `json:"type"`
	ProjectID  *int64        `json:"project_id,omitempty"`
	OperatorID int64         `json:"operator_id"`
	Message    string        `json:"message"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewOperationLog creates a log entry stamped with a fresh ID and the current time.
func NewOperationLog(opType OperationType, projectID *int64, operatorID int64, message string) (*OperationLog, error) {
	entry := &OperationLog{
		ID:         uuid.New(),
		Type:       opType,
		ProjectID:  projectID,
		OperatorID: operatorID,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks the entry's type and message.
func (l *OperationLog) Validate() error {
	switch l.Type {
	case OperationConfigAdd, OperationConfigEdit:
	default:
		return ErrInvalidOperationType
	}

	if l.Message == "" {
		return ErrEmptyOperationMessage
	}

	return nil
}
