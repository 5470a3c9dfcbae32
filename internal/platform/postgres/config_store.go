package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

const configColumns = `id, key, description, type, project_id, created_at, updated_at`

// PostgresConfigStore implements store.ConfigStore on PostgreSQL.
type PostgresConfigStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresConfigStore creates a config store over db.
// If logger is nil, a default logger will be used.
func NewPostgresConfigStore(db store.DBTX, logger *slog.Logger) *PostgresConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresConfigStore{
		db:     db,
		logger: logger.With(slog.String("component", "config_store")),
	}
}

var _ store.ConfigStore = (*PostgresConfigStore)(nil)

// Create implements store.ConfigStore.Create.
// The unique constraint on key makes the existence check and insert atomic.
func (s *PostgresConfigStore) Create(ctx context.Context, config *domain.Config) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := config.Validate(); err != nil {
		log.Warn("config validation failed during create",
			slog.String("error", err.Error()),
			slog.String("key", config.Key))
		return err
	}

	query := `
		INSERT INTO configs (key, description, type, project_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		config.Key,
		config.Description,
		string(config.Type),
		config.ProjectID,
		config.CreatedAt,
		config.UpdatedAt,
	).Scan(&config.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("config key already exists", slog.String("key", config.Key))
			return fmt.Errorf("%w: %s", store.ErrConfigKeyExists, config.Key)
		}

		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during config creation",
				slog.String("key", config.Key),
				slog.Int64("project_id", config.ProjectID))
			return fmt.Errorf("%w: project with ID %d not found",
				store.ErrInvalidEntity, config.ProjectID)
		}

		log.Error("failed to create config",
			slog.String("error", err.Error()),
			slog.String("key", config.Key))
		return store.NewStoreError("config", "create", "insert failed", MapError(err))
	}

	log.Info("config created",
		slog.Int64("config_id", config.ID),
		slog.String("key", config.Key),
		slog.Int64("project_id", config.ProjectID))
	return nil
}

// GetByKey implements store.ConfigStore.GetByKey.
func (s *PostgresConfigStore) GetByKey(ctx context.Context, key string) (*domain.Config, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + configColumns + ` FROM configs WHERE key = $1`

	config, err := scanConfig(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("config not found", slog.String("key", key))
			return nil, store.ErrConfigNotFound
		}
		log.Error("failed to get config by key",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, store.NewStoreError("config", "get", "query failed", MapError(err))
	}

	return config, nil
}

// GetByID implements store.ConfigStore.GetByID.
func (s *PostgresConfigStore) GetByID(ctx context.Context, id int64) (*domain.Config, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + configColumns + ` FROM configs WHERE id = $1`

	config, err := scanConfig(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("config not found", slog.Int64("config_id", id))
			return nil, store.ErrConfigNotFound
		}
		log.Error("failed to get config by ID",
			slog.String("error", err.Error()),
			slog.Int64("config_id", id))
		return nil, store.NewStoreError("config", "get", "query failed", MapError(err))
	}

	return config, nil
}

// FindByPrefix implements store.ConfigStore.FindByPrefix.
// Keys are compared in byte order via the "C" collation so ordering matches
// the memory store.
func (s *PostgresConfigStore) FindByPrefix(ctx context.Context, prefix string) ([]*domain.Config, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + configColumns + `
		FROM configs
		WHERE key LIKE $1 ESCAPE '\'
		ORDER BY key COLLATE "C"
	`

	rows, err := s.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		log.Error("failed to query configs by prefix",
			slog.String("error", err.Error()),
			slog.String("prefix", prefix))
		return nil, store.NewStoreError("config", "find", "query failed", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	configs := make([]*domain.Config, 0)
	for rows.Next() {
		config, err := scanConfig(rows)
		if err != nil {
			log.Error("failed to scan config row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("config", "find", "scan failed", err)
		}
		configs = append(configs, config)
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("config", "find", "row iteration failed", err)
	}

	log.Debug("configs found by prefix",
		slog.String("prefix", prefix),
		slog.Int("count", len(configs)))
	return configs, nil
}

// UpdateDescription implements store.ConfigStore.UpdateDescription.
func (s *PostgresConfigStore) UpdateDescription(
	ctx context.Context,
	id int64,
	description string,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE configs SET description = $1, updated_at = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, description, updatedAt, id)
	if err != nil {
		log.Error("failed to update config description",
			slog.String("error", err.Error()),
			slog.Int64("config_id", id))
		return store.NewStoreError("config", "update", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrConfigNotFound); err != nil {
		return err
	}

	log.Info("config description updated", slog.Int64("config_id", id))
	return nil
}

// Count implements store.ConfigStore.Count.
func (s *PostgresConfigStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM configs`).Scan(&n); err != nil {
		return 0, store.NewStoreError("config", "count", "query failed", MapError(err))
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*domain.Config, error) {
	var config domain.Config
	var configType string

	if err := row.Scan(
		&config.ID,
		&config.Key,
		&config.Description,
		&configType,
		&config.ProjectID,
		&config.CreatedAt,
		&config.UpdatedAt,
	); err != nil {
		return nil, err
	}

	config.Type = domain.ConfigType(configType)
	return &config, nil
}
