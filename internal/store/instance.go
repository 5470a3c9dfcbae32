package store

import (
	"context"

	"github.com/phrazzld/confhub/internal/domain"
)

// InstanceStore defines the interface for config instance persistence.
type InstanceStore interface {
	// Upsert writes the instance's value for its (config, environment, group)
	// triple, creating the row if needed. Concurrent upserts of one triple
	// resolve last-write-wins.
	// Returns ErrInvalidEntity if the config or environment does not exist.
	Upsert(ctx context.Context, instance *domain.ConfigInstance) error

	// Get retrieves the instance for the exact triple.
	// Returns ErrInstanceNotFound if there is none.
	Get(ctx context.Context, key domain.InstanceKey) (*domain.ConfigInstance, error)

	// GetValuesByKeys returns key → value for each config key that has an
	// instance for (envID, group). Keys without an instance are omitted.
	GetValuesByKeys(ctx context.Context, keys []string, envID int64, group string) (map[string]string, error)

	// GetValuesByPrefix returns key → value for each config whose key starts
	// with prefix and that has an instance for (envID, group).
	GetValuesByPrefix(ctx context.Context, prefix string, envID int64, group string) (map[string]string, error)
}
