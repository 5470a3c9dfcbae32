package store

import (
	"context"

	"github.com/phrazzld/confhub/internal/domain"
)

// OperationLogStore is the append-only audit sink.
type OperationLogStore interface {
	// Append writes one entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *domain.OperationLog) error
}
