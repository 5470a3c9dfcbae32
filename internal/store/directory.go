package store

import (
	"context"

	"github.com/phrazzld/confhub/internal/domain"
)

// EnvironmentStore provides read access to the closed set of environments.
type EnvironmentStore interface {
	// GetByName returns the environment with the given name.
	// Returns ErrEnvironmentNotFound if the name is unknown.
	GetByName(ctx context.Context, name string) (*domain.Environment, error)

	// List returns all environments ordered by ID.
	List(ctx context.Context) ([]*domain.Environment, error)
}

// ProjectStore is the project directory.
type ProjectStore interface {
	// Create inserts a project and assigns its ID.
	// Returns ErrProjectExists if the name is taken.
	Create(ctx context.Context, project *domain.Project) error

	// GetByName returns the project with the given name.
	// Returns ErrProjectNotFound if there is none.
	GetByName(ctx context.Context, name string) (*domain.Project, error)

	// GetByID returns the project with the given ID.
	// Returns ErrProjectNotFound if there is none.
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
}

// OperatorStore is the operator registry consulted by the identity gate.
type OperatorStore interface {
	// Create inserts an operator and assigns its ID when ID is zero.
	Create(ctx context.Context, operator *domain.Operator) error

	// GetByID returns the operator with the given ID.
	// Returns ErrOperatorNotFound if there is none.
	GetByID(ctx context.Context, id int64) (*domain.Operator, error)
}
