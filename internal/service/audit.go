package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/service/identity"
	"github.com/phrazzld/confhub/internal/store"
)

// AuditLog applies mutations and records one operation log entry for each
// that succeeds.
//
// In the default mode the entry is appended after the mutation; an append
// failure is logged and the mutation stands. In strict mode the mutation and
// its entry share one store transaction, so an append failure undoes the
// mutation and is returned.
type AuditLog struct {
	repos  store.Repositories
	tx     store.Transactor
	strict bool
	logger *slog.Logger
}

// NewAuditLog creates an audit log over repos. tx is required in strict mode.
func NewAuditLog(
	repos store.Repositories,
	tx store.Transactor,
	strict bool,
	logger *slog.Logger,
) (*AuditLog, error) {
	if repos.Configs == nil || repos.Instances == nil || repos.OperationLogs == nil {
		return nil, errors.New("audit log repositories cannot be nil")
	}
	if strict && tx == nil {
		return nil, errors.New("strict audit mode requires a transactor")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuditLog{
		repos:  repos,
		tx:     tx,
		strict: strict,
		logger: logger.With(slog.String("component", "audit_log")),
	}, nil
}

// Strict reports whether audit failures roll mutations back.
func (a *AuditLog) Strict() bool {
	return a.strict
}

// Mutate runs mutate and records an entry of opType with message. The
// acting operator is taken from ctx (see identity.WithOperator).
func (a *AuditLog) Mutate(
	ctx context.Context,
	opType domain.OperationType,
	projectID *int64,
	message string,
	mutate store.RepoFn,
) error {
	log := logger.FromContextOrDefault(ctx, a.logger)

	operatorID, _ := identity.OperatorFromContext(ctx)
	entry, err := domain.NewOperationLog(opType, projectID, operatorID, message)
	if err != nil {
		return fmt.Errorf("failed to build operation log entry: %w", err)
	}

	if a.strict {
		return a.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
			if err := mutate(ctx, repos); err != nil {
				return err
			}
			if err := repos.OperationLogs.Append(ctx, entry); err != nil {
				log.Error("audit append failed, rolling back mutation",
					slog.String("error", err.Error()),
					slog.String("log_id", entry.ID.String()),
					slog.String("type", string(opType)))
				return fmt.Errorf("%w: %v", ErrAuditFailed, err)
			}
			return nil
		})
	}

	if err := mutate(ctx, a.repos); err != nil {
		return err
	}

	if err := a.repos.OperationLogs.Append(ctx, entry); err != nil {
		log.Error("audit append failed",
			slog.String("error", err.Error()),
			slog.String("log_id", entry.ID.String()),
			slog.String("type", string(opType)),
			slog.Int64("operator_id", operatorID))
	}

	return nil
}
