package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_FallbackMode(t *testing.T) {
	h := newHarness(t, withMode(service.ModeDefaultFallback))
	ctx := context.Background()
	h.create(t, "app.timeout")
	h.create(t, "app.tls")
	h.set(t, "app.timeout", "prod", "", "30")
	h.set(t, "app.tls", "prod", "", "false")
	h.set(t, "app.tls", "prod", "canary", "true")

	value, err := h.registry.GetOne(ctx, testOperator, "prod", "app.timeout", "canary")
	require.NoError(t, err)
	assert.Equal(t, "30", value, "missing named group falls back to the default group")

	value, err = h.registry.GetOne(ctx, testOperator, "prod", "app.tls", "canary")
	require.NoError(t, err)
	assert.Equal(t, "true", value, "named group wins when present")

	values, err := h.registry.GetMany(ctx, testOperator, "prod", []string{"app.timeout", "app.tls"}, "canary")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"app.timeout": "30", "app.tls": "true"}, values)

	values, err = h.registry.GetByPrefix(ctx, testOperator, "prod", "app.t", "canary")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"app.timeout": "30", "app.tls": "true"}, values)

	_, err = h.registry.GetOne(ctx, testOperator, "dev", "app.timeout", "canary")
	assert.ErrorIs(t, err, service.ErrInstanceNotFound, "fallback never crosses environments")
}

func TestResolver_ExactModeDoesNotFallBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "app.timeout")
	h.set(t, "app.timeout", "prod", "", "30")

	_, err := h.registry.GetOne(ctx, testOperator, "prod", "app.timeout", "canary")
	require.ErrorIs(t, err, service.ErrInstanceNotFound)
	assert.Equal(t, "Config app.timeout has no value in env prod group [canary]", err.Error())

	values, err := h.registry.GetMany(ctx, testOperator, "prod", []string{"app.timeout"}, "canary")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestResolver_TypedValues(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	config := &domain.Config{ProjectID: h.project.ID, Key: "app.retries", Type: domain.ConfigTypeInt}
	require.NoError(t, h.mem.Configs().Create(ctx, config))

	env, err := h.dir.ResolveEnvironment(ctx, "prod")
	require.NoError(t, err)

	_, err = h.resolver.SetValue(ctx, config.ID, env, "", "three")
	require.ErrorIs(t, err, service.ErrInvalidValue)
	assert.Equal(t, "Invalid value for int config app.retries", err.Error())

	instance, err := h.resolver.SetValue(ctx, config.ID, env, "", "3")
	require.NoError(t, err)
	assert.Equal(t, "3", instance.Value)
}

func TestResolver_SetValue_Guards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.create(t, "app.timeout")
	config, err := h.catalog.FindByKey(ctx, "app.timeout")
	require.NoError(t, err)

	_, err = h.resolver.SetValue(ctx, config.ID, domain.Environment{Name: "ghost"}, "", "1")
	assert.ErrorIs(t, err, service.ErrInvalidEnvironment)

	env, err := h.dir.ResolveEnvironment(ctx, "dev")
	require.NoError(t, err)
	_, err = h.resolver.SetValue(ctx, 4242, env, "", "1")
	assert.ErrorIs(t, err, service.ErrConfigNotFound)
}

func TestDirectory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	env, err := h.dir.ResolveEnvironment(ctx, "prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", env.Name)
	assert.Equal(t, int64(3), env.ID)

	h.calls.Store(0)
	_, err = h.dir.ResolveEnvironment(ctx, "prod")
	require.NoError(t, err)
	assert.Zero(t, h.calls.Load(), "hits are served from the cache")

	_, err = h.dir.ResolveEnvironment(ctx, "staging")
	require.ErrorIs(t, err, service.ErrInvalidEnvironment)
	_, err = h.dir.ResolveEnvironment(ctx, "staging")
	require.ErrorIs(t, err, service.ErrInvalidEnvironment)
	assert.Equal(t, int64(2), h.calls.Load(), "misses are not cached")

	h.dir.Flush()
	_, err = h.dir.ResolveEnvironment(ctx, "prod")
	require.NoError(t, err)
	assert.Equal(t, int64(3), h.calls.Load())

	envs, err := h.dir.ListEnvironments(ctx)
	require.NoError(t, err)
	names := make([]string, len(envs))
	for i, e := range envs {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"dev", "test", "prod"}, names)
}

func TestParseKeyList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
		{" , ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ParseKeyList(tt.in))
		})
	}
}
