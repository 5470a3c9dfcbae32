package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/confhub/internal/api/shared"
	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/memory"
	"github.com/phrazzld/confhub/internal/service"
	"github.com/phrazzld/confhub/internal/service/identity"
	"github.com/phrazzld/confhub/internal/store"
	"github.com/stretchr/testify/require"
)

const testOperator = "100"

// newTestRegistry builds a registry over a fresh memory store with
// project "core" and operator 100.
func newTestRegistry(t *testing.T) *service.Registry {
	t.Helper()
	ctx := context.Background()

	mem := memory.New([]string{"dev", "test", "prod"}, nil)
	require.NoError(t, mem.Projects().Create(ctx, &domain.Project{Name: "core"}))
	require.NoError(t, mem.Operators().Create(ctx, &domain.Operator{ID: 100, Name: "ops", Enabled: true}))

	audit, err := service.NewAuditLog(store.Repositories{
		Configs:       mem.Configs(),
		Instances:     mem.Instances(),
		OperationLogs: mem.OperationLogs(),
	}, mem, false, nil)
	require.NoError(t, err)

	catalog, err := service.NewCatalog(mem.Configs(), mem.Projects(), audit, nil)
	require.NoError(t, err)
	resolver, err := service.NewResolver(mem.Configs(), mem.Instances(), audit, service.ModeExact, nil)
	require.NoError(t, err)
	dir, err := service.NewDirectory(mem.Environments(), 0, nil)
	require.NoError(t, err)
	gate, err := identity.NewStoreGate(mem.Operators(), nil)
	require.NoError(t, err)

	registry, err := service.NewRegistry(service.RegistryDeps{
		Gate:      gate,
		Catalog:   catalog,
		Directory: dir,
		Resolver:  resolver,
		Projects:  mem.Projects(),
	})
	require.NoError(t, err)
	return registry
}

func newTestRouter(registry ConfigRegistry) http.Handler {
	r := chi.NewRouter()
	r.Route("/config2", NewConfigHandler(registry, nil).Routes)
	return r
}

// call issues GET path?params and decodes the envelope.
func call(t *testing.T, h http.Handler, path string, params url.Values) (int, shared.Envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path+"?"+params.Encode(), nil)
	req = req.WithContext(shared.WithTraceID(req.Context(), "trace-test"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env shared.Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}
