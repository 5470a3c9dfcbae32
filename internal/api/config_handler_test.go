package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/phrazzld/confhub/internal/api/shared"
	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHandler_CreateSetGet(t *testing.T) {
	router := newTestRouter(newTestRegistry(t))

	status, env := call(t, router, "/config2/create", url.Values{
		"id": {testOperator}, "project": {"core"}, "key": {"app.timeout"}, "desc": {"seconds"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, shared.StatusSuccess, env.Status)
	assert.Equal(t, "Created config app.timeout in project core", env.Result)

	status, env = call(t, router, "/config2/create", url.Values{
		"id": {testOperator}, "project": {"core"}, "key": {"app.timeout"},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, shared.StatusError, env.Status)
	assert.Contains(t, env.Message, "already exists")
	assert.Equal(t, "trace-test", env.TraceID)

	status, env = call(t, router, "/config2/set", url.Values{
		"id": {testOperator}, "env": {"prod"}, "key": {"app.timeout"}, "value": {"30"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Set config app.timeout in env prod group [] to 30", env.Result)

	status, env = call(t, router, "/config2/get", url.Values{
		"id": {testOperator}, "env": {"prod"}, "key": {"app.timeout"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "30", env.Result)

	status, env = call(t, router, "/config2/get", url.Values{
		"id": {testOperator}, "env": {"prod"}, "key": {"app.timeout"}, "group": {"canary"},
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Config app.timeout has no value in env prod group [canary]", env.Message)
}

func TestConfigHandler_SetEmptyValue(t *testing.T) {
	router := newTestRouter(newTestRegistry(t))
	call(t, router, "/config2/create", url.Values{"id": {testOperator}, "project": {"core"}, "key": {"app.banner"}})

	status, _ := call(t, router, "/config2/set", url.Values{
		"id": {testOperator}, "env": {"dev"}, "key": {"app.banner"}, "value": {""},
	})
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, router, "/config2/get", url.Values{
		"id": {testOperator}, "env": {"dev"}, "key": {"app.banner"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", env.Result)

	status, env = call(t, router, "/config2/set", url.Values{
		"id": {testOperator}, "env": {"dev"}, "key": {"app.banner"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid value: required field", env.Message)
}

func TestConfigHandler_GetVariants(t *testing.T) {
	router := newTestRouter(newTestRegistry(t))
	for _, key := range []string{"app.timeout", "app.tls", "db.pool"} {
		call(t, router, "/config2/create", url.Values{"id": {testOperator}, "project": {"core"}, "key": {key}})
		call(t, router, "/config2/set", url.Values{
			"id": {testOperator}, "env": {"prod"}, "key": {key}, "value": {key + "-v"},
		})
	}

	tests := []struct {
		name       string
		params     url.Values
		wantStatus int
		wantResult any
		wantMsg    string
	}{
		{
			name:       "keys",
			params:     url.Values{"keys": {"app.timeout, db.pool,,missing.key"}},
			wantStatus: http.StatusOK,
			wantResult: map[string]any{"app.timeout": "app.timeout-v", "db.pool": "db.pool-v"},
		},
		{
			name:       "prefix",
			params:     url.Values{"prefix": {"app.t"}},
			wantStatus: http.StatusOK,
			wantResult: map[string]any{"app.timeout": "app.timeout-v", "app.tls": "app.tls-v"},
		},
		{
			name:       "short prefix",
			params:     url.Values{"prefix": {"app"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Prefix is too short",
		},
		{
			name:       "nothing selected",
			params:     url.Values{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Key is null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Set("id", testOperator)
			tt.params.Set("env", "prod")

			status, env := call(t, router, "/config2/get", tt.params)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, env.Message)
				return
			}
			assert.Equal(t, tt.wantResult, env.Result)
		})
	}
}

func TestConfigHandler_List(t *testing.T) {
	router := newTestRouter(newTestRegistry(t))
	call(t, router, "/config2/create", url.Values{"id": {testOperator}, "project": {"core"}, "key": {"app.timeout"}})
	call(t, router, "/config2/create", url.Values{"id": {testOperator}, "project": {"core"}, "key": {"app.tls"}})

	status, env := call(t, router, "/config2/list", url.Values{"prefix": {"app."}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Prefix is too short", env.Message)

	// no id needed to list
	status, env = call(t, router, "/config2/list", url.Values{"prefix": {"app.t"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"app.timeout", "app.tls"}, env.Result)
}

func TestConfigHandler_Failures(t *testing.T) {
	router := newTestRouter(newTestRegistry(t))

	tests := []struct {
		name       string
		path       string
		params     url.Values
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unknown operator",
			path:       "/config2/create",
			params:     url.Values{"id": {"999"}, "project": {"core"}, "key": {"app.timeout"}},
			wantStatus: http.StatusForbidden,
			wantMsg:    "Operator 999 is not allowed to CreateConfig",
		},
		{
			name:       "malformed id",
			path:       "/config2/get",
			params:     url.Values{"id": {"abc"}, "env": {"prod"}, "key": {"a.b"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid id: must be an integer",
		},
		{
			name:       "missing id",
			path:       "/config2/set",
			params:     url.Values{"env": {"prod"}, "key": {"a.b"}, "value": {"1"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid id: required field",
		},
		{
			name:       "unknown project",
			path:       "/config2/create",
			params:     url.Values{"id": {testOperator}, "project": {"nope"}, "key": {"app.timeout"}},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Project nope does not exist",
		},
		{
			name:       "invalid environment",
			path:       "/config2/set",
			params:     url.Values{"id": {testOperator}, "env": {"staging"}, "key": {"a.b"}, "value": {"1"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid environment staging",
		},
		{
			name:       "unknown config",
			path:       "/config2/set",
			params:     url.Values{"id": {testOperator}, "env": {"prod"}, "key": {"a.b"}, "value": {"1"}},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Config a.b does not exist",
		},
		{
			name:       "invalid key",
			path:       "/config2/create",
			params:     url.Values{"id": {testOperator}, "project": {"core"}, "key": {"a b"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "description of unknown config",
			path:       "/config2/desc",
			params:     url.Values{"id": {testOperator}, "key": {"a.b"}, "desc": {"x"}},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Config a.b does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, router, tt.path, tt.params)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, shared.StatusError, env.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, env.Message)
			}
		})
	}
}

func TestConfigHandler_UpdateDescriptionAndEnvs(t *testing.T) {
	router := newTestRouter(newTestRegistry(t))
	call(t, router, "/config2/create", url.Values{"id": {testOperator}, "project": {"core"}, "key": {"app.timeout"}})

	status, env := call(t, router, "/config2/desc", url.Values{
		"id": {testOperator}, "key": {"app.timeout"}, "desc": {"request timeout"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Updated description of config app.timeout", env.Result)

	status, env = call(t, router, "/config2/envs", url.Values{})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"dev", "test", "prod"}, env.Result)
}

// brokenRegistry fails every call with an unexpected error.
type brokenRegistry struct{ err error }

func (b brokenRegistry) CreateConfig(context.Context, int64, string, string, string) (string, error) {
	return "", b.err
}

func (b brokenRegistry) SetValue(context.Context, int64, string, string, string, string) (string, error) {
	return "", b.err
}

func (b brokenRegistry) UpdateDescription(context.Context, int64, string, string) (string, error) {
	return "", b.err
}

func (b brokenRegistry) ListByPrefix(context.Context, int64, string) ([]string, error) {
	return nil, b.err
}

func (b brokenRegistry) Get(context.Context, int64, string, service.GetQuery) (any, error) {
	return nil, b.err
}

func (b brokenRegistry) Environments(context.Context) ([]domain.Environment, error) {
	return nil, b.err
}

func TestConfigHandler_UnexpectedErrorsAreHidden(t *testing.T) {
	cause := &service.RegistryError{
		Operation: "get_value",
		Message:   "failed to look up value",
		Err:       errors.New("pq: connection to postgres://admin:s3cret@db refused"),
	}
	router := newTestRouter(brokenRegistry{err: cause})

	status, env := call(t, router, "/config2/get", url.Values{"id": {testOperator}, "env": {"prod"}, "key": {"a.b"}})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to get config", env.Message)

	status, env = call(t, router, "/config2/envs", url.Values{})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, env.Message, "s3cret")
}
