// Package identity decides whether an operator may call the registry.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

// ErrPermissionDenied is returned when an operator fails verification.
var ErrPermissionDenied = errors.New("permission denied")

// Gate verifies operator identities.
type Gate interface {
	// Verify returns nil if operatorID may proceed, an error wrapping
	// ErrPermissionDenied if it may not, or another error if the decision
	// could not be made.
	Verify(ctx context.Context, operatorID int64) error
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context, operatorID int64) error

// Verify implements Gate.
func (f GateFunc) Verify(ctx context.Context, operatorID int64) error {
	return f(ctx, operatorID)
}

// StoreGate admits operators that are registered and enabled.
type StoreGate struct {
	operators store.OperatorStore
	logger    *slog.Logger
}

// NewStoreGate creates a gate backed by the operator registry.
func NewStoreGate(operators store.OperatorStore, logger *slog.Logger) (*StoreGate, error) {
	if operators == nil {
		return nil, errors.New("operator store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreGate{
		operators: operators,
		logger:    logger.With(slog.String("component", "store_gate")),
	}, nil
}

// Verify implements Gate.
func (g *StoreGate) Verify(ctx context.Context, operatorID int64) error {
	log := logger.FromContextOrDefault(ctx, g.logger)

	op, err := g.operators.GetByID(ctx, operatorID)
	if err != nil {
		if errors.Is(err, store.ErrOperatorNotFound) {
			log.Warn("unknown operator", slog.Int64("operator_id", operatorID))
			return fmt.Errorf("%w: operator %d is not registered", ErrPermissionDenied, operatorID)
		}
		return fmt.Errorf("failed to look up operator %d: %w", operatorID, err)
	}

	if !op.Enabled {
		log.Warn("disabled operator", slog.Int64("operator_id", operatorID))
		return fmt.Errorf("%w: operator %d is disabled", ErrPermissionDenied, operatorID)
	}

	return nil
}

// AllowListGate admits a fixed set of operator IDs.
type AllowListGate struct {
	allowed map[int64]struct{}
}

// NewAllowListGate creates a gate admitting exactly ids.
func NewAllowListGate(ids []int64) *AllowListGate {
	allowed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	return &AllowListGate{allowed: allowed}
}

// Verify implements Gate.
func (g *AllowListGate) Verify(_ context.Context, operatorID int64) error {
	if _, ok := g.allowed[operatorID]; !ok {
		return fmt.Errorf("%w: operator %d is not allowed", ErrPermissionDenied, operatorID)
	}
	return nil
}

type contextKey struct{}

// WithOperator returns a context carrying the acting operator's ID.
func WithOperator(ctx context.Context, operatorID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, operatorID)
}

// OperatorFromContext returns the acting operator's ID, if any.
func OperatorFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok
}
