package store

import (
	"context"
	"time"

	"github.com/phrazzld/confhub/internal/domain"
)

// ConfigStore defines the interface for config catalog persistence.
type ConfigStore interface {
	// Create inserts a new config and assigns its ID.
	// The check for an existing key and the insert are a single atomic step:
	// returns ErrConfigKeyExists if the key is already taken by any project.
	// Returns ErrInvalidEntity if the owning project does not exist.
	Create(ctx context.Context, config *domain.Config) error

	// GetByKey retrieves a config by its key.
	// Returns ErrConfigNotFound if no config has that key.
	GetByKey(ctx context.Context, key string) (*domain.Config, error)

	// GetByID retrieves a config by its ID.
	// Returns ErrConfigNotFound if the config does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Config, error)

	// FindByPrefix returns every config whose key starts with prefix,
	// ordered by key. The test is a case-sensitive true prefix test.
	// Returns an empty slice when nothing matches.
	FindByPrefix(ctx context.Context, prefix string) ([]*domain.Config, error)

	// UpdateDescription replaces a config's description.
	// Returns ErrConfigNotFound if the config does not exist.
	UpdateDescription(ctx context.Context, id int64, description string, updatedAt time.Time) error

	// Count returns the number of configs in the catalog.
	Count(ctx context.Context) (int, error)
}
