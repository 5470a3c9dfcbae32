package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/memory"
	"github.com/phrazzld/confhub/internal/service/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGate(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(nil, nil)
	require.NoError(t, mem.Operators().Create(ctx, &domain.Operator{ID: 1, Name: "ops", Enabled: true}))
	require.NoError(t, mem.Operators().Create(ctx, &domain.Operator{ID: 2, Name: "retired", Enabled: false}))

	gate, err := identity.NewStoreGate(mem.Operators(), nil)
	require.NoError(t, err)

	tests := []struct {
		name       string
		operatorID int64
		denied     bool
	}{
		{"enabled operator", 1, false},
		{"disabled operator", 2, true},
		{"unknown operator", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Verify(ctx, tt.operatorID)
			if tt.denied {
				assert.ErrorIs(t, err, identity.ErrPermissionDenied)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewStoreGate_NilStore(t *testing.T) {
	_, err := identity.NewStoreGate(nil, nil)
	assert.Error(t, err)
}

func TestAllowListGate(t *testing.T) {
	gate := identity.NewAllowListGate([]int64{7, 9})
	ctx := context.Background()

	assert.NoError(t, gate.Verify(ctx, 7))
	assert.NoError(t, gate.Verify(ctx, 9))
	assert.ErrorIs(t, gate.Verify(ctx, 8), identity.ErrPermissionDenied)
}

func TestGateFunc(t *testing.T) {
	boom := errors.New("registry unreachable")
	gate := identity.GateFunc(func(context.Context, int64) error { return boom })

	err := gate.Verify(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, identity.ErrPermissionDenied))
}

func TestOperatorContext(t *testing.T) {
	_, ok := identity.OperatorFromContext(context.Background())
	assert.False(t, ok)

	id, ok := identity.OperatorFromContext(identity.WithOperator(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}
