package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

// PostgresInstanceStore implements store.InstanceStore on PostgreSQL.
type PostgresInstanceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInstanceStore creates an instance store over db.
// If logger is nil, a default logger will be used.
func NewPostgresInstanceStore(db store.DBTX, logger *slog.Logger) *PostgresInstanceStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInstanceStore{
		db:     db,
		logger: logger.With(slog.String("component", "instance_store")),
	}
}

var _ store.InstanceStore = (*PostgresInstanceStore)(nil)

// Upsert implements store.InstanceStore.Upsert.
// The primary key on the triple plus ON CONFLICT makes the write atomic;
// created_at is kept from the first write.
func (s *PostgresInstanceStore) Upsert(ctx context.Context, instance *domain.ConfigInstance) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := instance.Validate(); err != nil {
		log.Warn("instance validation failed during upsert",
			slog.String("error", err.Error()),
			slog.Int64("config_id", instance.ConfigID))
		return err
	}

	query := `
		INSERT INTO config_instances (config_id, env_id, group_name, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (config_id, env_id, group_name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		instance.ConfigID,
		instance.EnvironmentID,
		instance.Group,
		instance.Value,
		instance.CreatedAt,
		instance.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during instance upsert",
				slog.Int64("config_id", instance.ConfigID),
				slog.Int64("env_id", instance.EnvironmentID))
			return fmt.Errorf("%w: config %d or environment %d not found",
				store.ErrInvalidEntity, instance.ConfigID, instance.EnvironmentID)
		}

		log.Error("failed to upsert config instance",
			slog.String("error", err.Error()),
			slog.Int64("config_id", instance.ConfigID),
			slog.Int64("env_id", instance.EnvironmentID),
			slog.String("group", instance.Group))
		return store.NewStoreError("instance", "upsert", "upsert failed", MapError(err))
	}

	log.Debug("config instance upserted",
		slog.Int64("config_id", instance.ConfigID),
		slog.Int64("env_id", instance.EnvironmentID),
		slog.String("group", instance.Group))
	return nil
}

// Get implements store.InstanceStore.Get.
func (s *PostgresInstanceStore) Get(ctx context.Context, key domain.InstanceKey) (*domain.ConfigInstance, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT config_id, env_id, group_name, value, created_at, updated_at
		FROM config_instances
		WHERE config_id = $1 AND env_id = $2 AND group_name = $3
	`

	var instance domain.ConfigInstance
	err := s.db.QueryRowContext(ctx, query, key.ConfigID, key.EnvironmentID, key.Group).Scan(
		&instance.ConfigID,
		&instance.EnvironmentID,
		&instance.Group,
		&instance.Value,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInstanceNotFound
		}
		log.Error("failed to get config instance",
			slog.String("error", err.Error()),
			slog.Int64("config_id", key.ConfigID))
		return nil, store.NewStoreError("instance", "get", "query failed", MapError(err))
	}

	return &instance, nil
}

// GetValuesByKeys implements store.InstanceStore.GetValuesByKeys.
func (s *PostgresInstanceStore) GetValuesByKeys(
	ctx context.Context,
	keys []string,
	envID int64,
	group string,
) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	placeholders := make([]string, len(keys))
	args := make([]any, 0, len(keys)+2)
	args = append(args, envID, group)
	for i, key := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, key)
	}

	query := `
		SELECT c.key, i.value
		FROM config_instances i
		JOIN configs c ON c.id = i.config_id
		WHERE i.env_id = $1 AND i.group_name = $2
		  AND c.key IN (` + strings.Join(placeholders, ", ") + `)
	`

	return s.queryValues(ctx, "get_many", query, args...)
}

// GetValuesByPrefix implements store.InstanceStore.GetValuesByPrefix.
func (s *PostgresInstanceStore) GetValuesByPrefix(
	ctx context.Context,
	prefix string,
	envID int64,
	group string,
) (map[string]string, error) {
	query := `
		SELECT c.key, i.value
		FROM config_instances i
		JOIN configs c ON c.id = i.config_id
		WHERE i.env_id = $1 AND i.group_name = $2
		  AND c.key LIKE $3 ESCAPE '\'
	`

	return s.queryValues(ctx, "get_by_prefix", query, envID, group, escapeLike(prefix)+"%")
}

func (s *PostgresInstanceStore) queryValues(
	ctx context.Context,
	operation, query string,
	args ...any,
) (map[string]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query config values",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return nil, store.NewStoreError("instance", operation, "query failed", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, store.NewStoreError("instance", operation, "scan failed", err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("instance", operation, "row iteration failed", err)
	}

	return values, nil
}
