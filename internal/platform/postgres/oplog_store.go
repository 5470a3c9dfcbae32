package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

// PostgresOperationLogStore implements store.OperationLogStore.
type PostgresOperationLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOperationLogStore creates an audit sink over db.
func NewPostgresOperationLogStore(db store.DBTX, logger *slog.Logger) *PostgresOperationLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOperationLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "operation_log_store")),
	}
}

var _ store.OperationLogStore = (*PostgresOperationLogStore)(nil)

// Append implements store.OperationLogStore.Append.
func (s *PostgresOperationLogStore) Append(ctx context.Context, entry *domain.OperationLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return err
	}

	var projectID sql.NullInt64
	if entry.ProjectID != nil {
		projectID = sql.NullInt64{Int64: *entry.ProjectID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operation_logs (id, type, project_id, operator_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		entry.ID,
		string(entry.Type),
		projectID,
		entry.OperatorID,
		entry.Message,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append operation log",
			slog.String("error", err.Error()),
			slog.String("log_id", entry.ID.String()))
		return store.NewStoreError("operation_log", "append", "insert failed", MapError(err))
	}

	return nil
}
