package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/service"
	"github.com/phrazzld/confhub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit_EntriesForMutations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.create(t, "app.timeout")
	h.set(t, "app.timeout", "prod", "canary", "30")
	_, err := h.registry.UpdateDescription(ctx, testOperator, "app.timeout", "seconds")
	require.NoError(t, err)

	entries := h.mem.Entries()
	require.Len(t, entries, 3)

	created := entries[0]
	assert.Equal(t, domain.OperationConfigAdd, created.Type)
	assert.Equal(t, testOperator, created.OperatorID)
	require.NotNil(t, created.ProjectID)
	assert.Equal(t, h.project.ID, *created.ProjectID)
	assert.Equal(t, "Created config app.timeout in project core", created.Message)

	set := entries[1]
	assert.Equal(t, domain.OperationConfigEdit, set.Type)
	assert.Nil(t, set.ProjectID)
	assert.Equal(t, "Set config app.timeout in env prod group [canary] to 30", set.Message)

	described := entries[2]
	assert.Equal(t, domain.OperationConfigEdit, described.Type)
	require.NotNil(t, described.ProjectID)
	assert.Equal(t, "Updated description of config app.timeout", described.Message)
}

func TestAudit_NoEntryForFailedMutation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "app.timeout")

	_, err := h.registry.CreateConfig(ctx, testOperator, "core", "app.timeout", "")
	require.ErrorIs(t, err, service.ErrAlreadyExists)

	_, err = h.registry.SetValue(ctx, testOperator, "staging", "app.timeout", "", "1")
	require.ErrorIs(t, err, service.ErrInvalidEnvironment)

	assert.Len(t, h.mem.Entries(), 1)
}

func TestAudit_LenientModeKeepsMutation(t *testing.T) {
	h := newHarness(t, withFailingAudit(errAuditDown))
	ctx := context.Background()

	_, err := h.registry.CreateConfig(ctx, testOperator, "core", "app.timeout", "")
	require.NoError(t, err)

	_, err = h.registry.SetValue(ctx, testOperator, "prod", "app.timeout", "", "30")
	require.NoError(t, err)

	value, err := h.registry.GetOne(ctx, testOperator, "prod", "app.timeout", "")
	require.NoError(t, err)
	assert.Equal(t, "30", value)
	assert.Empty(t, h.mem.Entries())
}

func TestAudit_StrictModeRollsBack(t *testing.T) {
	h := newHarness(t, withStrictAudit(), withFailingAudit(errAuditDown))
	ctx := context.Background()

	_, err := h.registry.CreateConfig(ctx, testOperator, "core", "app.timeout", "")
	require.ErrorIs(t, err, service.ErrAuditFailed)

	count, err := h.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "config must not survive a failed audit")

	_, err = h.catalog.FindByKey(ctx, "app.timeout")
	assert.ErrorIs(t, err, service.ErrConfigNotFound)
}

func TestAudit_StrictModeRollsBackValue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "app.timeout")
	h.set(t, "app.timeout", "prod", "", "30")

	config, err := h.catalog.FindByKey(ctx, "app.timeout")
	require.NoError(t, err)

	audit, err := service.NewAuditLog(store.Repositories{
		Configs:       h.mem.Configs(),
		Instances:     h.mem.Instances(),
		OperationLogs: h.mem.OperationLogs(),
	}, failingAuditTx{inner: h.mem, err: errAuditDown}, true, nil)
	require.NoError(t, err)

	resolver, err := service.NewResolver(h.mem.Configs(), h.mem.Instances(), audit, service.ModeExact, nil)
	require.NoError(t, err)

	env, err := h.dir.ResolveEnvironment(ctx, "prod")
	require.NoError(t, err)

	_, err = resolver.SetValue(ctx, config.ID, env, "", "45")
	require.ErrorIs(t, err, service.ErrAuditFailed)

	value, err := h.registry.GetOne(ctx, testOperator, "prod", "app.timeout", "")
	require.NoError(t, err)
	assert.Equal(t, "30", value)
	assert.Len(t, h.mem.Entries(), 2)
}

func TestAudit_StrictModeRecordsEntries(t *testing.T) {
	h := newHarness(t, withStrictAudit())
	h.create(t, "app.timeout")
	h.set(t, "app.timeout", "dev", "", "5")

	entries := h.mem.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.OperationConfigAdd, entries[0].Type)
	assert.Equal(t, domain.OperationConfigEdit, entries[1].Type)
}

func TestNewAuditLog_StrictNeedsTransactor(t *testing.T) {
	h := newHarness(t)
	_, err := service.NewAuditLog(store.Repositories{
		Configs:       h.mem.Configs(),
		Instances:     h.mem.Instances(),
		OperationLogs: h.mem.OperationLogs(),
	}, nil, true, nil)
	assert.Error(t, err)
}
