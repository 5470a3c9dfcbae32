package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

// PostgresEnvironmentStore implements store.EnvironmentStore.
type PostgresEnvironmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEnvironmentStore creates an environment store over db.
func NewPostgresEnvironmentStore(db store.DBTX, logger *slog.Logger) *PostgresEnvironmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEnvironmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "environment_store")),
	}
}

var _ store.EnvironmentStore = (*PostgresEnvironmentStore)(nil)

// GetByName implements store.EnvironmentStore.GetByName.
func (s *PostgresEnvironmentStore) GetByName(ctx context.Context, name string) (*domain.Environment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var env domain.Environment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM environments WHERE name = $1`, name,
	).Scan(&env.ID, &env.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEnvironmentNotFound
		}
		log.Error("failed to get environment",
			slog.String("error", err.Error()),
			slog.String("env", name))
		return nil, store.NewStoreError("environment", "get", "query failed", MapError(err))
	}

	return &env, nil
}

// List implements store.EnvironmentStore.List.
func (s *PostgresEnvironmentStore) List(ctx context.Context) ([]*domain.Environment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM environments ORDER BY id`)
	if err != nil {
		log.Error("failed to list environments", slog.String("error", err.Error()))
		return nil, store.NewStoreError("environment", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	envs := make([]*domain.Environment, 0)
	for rows.Next() {
		var env domain.Environment
		if err := rows.Scan(&env.ID, &env.Name); err != nil {
			return nil, store.NewStoreError("environment", "list", "scan failed", err)
		}
		envs = append(envs, &env)
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("environment", "list", "row iteration failed", err)
	}

	return envs, nil
}

// PostgresProjectStore implements store.ProjectStore.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a project store over db.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// Create implements store.ProjectStore.Create.
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO projects (name) VALUES ($1) RETURNING id`, project.Name,
	).Scan(&project.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrProjectExists, project.Name)
		}
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project", project.Name))
		return store.NewStoreError("project", "create", "insert failed", MapError(err))
	}

	log.Info("project created",
		slog.Int64("project_id", project.ID),
		slog.String("project", project.Name))
	return nil
}

// GetByName implements store.ProjectStore.GetByName.
func (s *PostgresProjectStore) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	return s.get(ctx, `SELECT id, name FROM projects WHERE name = $1`, name)
}

// GetByID implements store.ProjectStore.GetByID.
func (s *PostgresProjectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	return s.get(ctx, `SELECT id, name FROM projects WHERE id = $1`, id)
}

func (s *PostgresProjectStore) get(ctx context.Context, query string, arg any) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var project domain.Project
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&project.ID, &project.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project",
			slog.String("error", err.Error()),
			slog.Any("lookup", arg))
		return nil, store.NewStoreError("project", "get", "query failed", MapError(err))
	}

	return &project, nil
}

// PostgresOperatorStore implements store.OperatorStore.
type PostgresOperatorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOperatorStore creates an operator store over db.
func NewPostgresOperatorStore(db store.DBTX, logger *slog.Logger) *PostgresOperatorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOperatorStore{
		db:     db,
		logger: logger.With(slog.String("component", "operator_store")),
	}
}

var _ store.OperatorStore = (*PostgresOperatorStore)(nil)

// Create implements store.OperatorStore.Create.
// Operator IDs come from the upstream identity system, so a zero ID is rejected.
func (s *PostgresOperatorStore) Create(ctx context.Context, operator *domain.Operator) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if operator.ID <= 0 {
		return domain.NewValidationError("id", "must be positive", domain.ErrInvalidID)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operators (id, name, enabled) VALUES ($1, $2, $3)`,
		operator.ID, operator.Name, operator.Enabled,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %d", store.ErrOperatorExists, operator.ID)
		}
		log.Error("failed to create operator",
			slog.String("error", err.Error()),
			slog.Int64("operator_id", operator.ID))
		return store.NewStoreError("operator", "create", "insert failed", MapError(err))
	}

	log.Info("operator registered", slog.Int64("operator_id", operator.ID))
	return nil
}

// GetByID implements store.OperatorStore.GetByID.
func (s *PostgresOperatorStore) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var op domain.Operator
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, enabled FROM operators WHERE id = $1`, id,
	).Scan(&op.ID, &op.Name, &op.Enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOperatorNotFound
		}
		log.Error("failed to get operator",
			slog.String("error", err.Error()),
			slog.Int64("operator_id", id))
		return nil, store.NewStoreError("operator", "get", "query failed", MapError(err))
	}

	return &op, nil
}
