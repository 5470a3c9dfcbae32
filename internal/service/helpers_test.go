package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/memory"
	"github.com/phrazzld/confhub/internal/service"
	"github.com/phrazzld/confhub/internal/service/identity"
	"github.com/phrazzld/confhub/internal/store"
	"github.com/stretchr/testify/require"
)

const (
	testOperator    int64 = 100
	unknownOperator int64 = 999
)

type testingT interface {
	require.TestingT
	Helper()
}

type harnessOptions struct {
	strict      bool
	mode        service.Mode
	policy      service.Policy
	failAudit   error
	failAuditTx error
}

type harnessOption func(*harnessOptions)

func withStrictAudit() harnessOption { return func(o *harnessOptions) { o.strict = true } }

func withMode(mode service.Mode) harnessOption { return func(o *harnessOptions) { o.mode = mode } }

func withPolicy(p service.Policy) harnessOption { return func(o *harnessOptions) { o.policy = p } }

// withFailingAudit makes every operation log append fail with err.
func withFailingAudit(err error) harnessOption {
	return func(o *harnessOptions) {
		o.failAudit = err
		o.failAuditTx = err
	}
}

type harness struct {
	mem      *memory.Store
	registry *service.Registry
	catalog  *service.Catalog
	resolver *service.Resolver
	dir      *service.Directory
	project  *domain.Project
	calls    *atomic.Int64
}

func newHarness(t testingT, opts ...harnessOption) *harness {
	t.Helper()

	o := harnessOptions{policy: service.DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()
	mem := memory.New([]string{"dev", "test", "prod"}, nil)

	project := &domain.Project{Name: "core"}
	require.NoError(t, mem.Projects().Create(ctx, project))
	require.NoError(t, mem.Operators().Create(ctx, &domain.Operator{ID: testOperator, Name: "ops", Enabled: true}))

	calls := &atomic.Int64{}
	configs := &countingConfigs{ConfigStore: mem.Configs(), calls: calls}
	instances := &countingInstances{InstanceStore: mem.Instances(), calls: calls}
	envs := &countingEnvironments{EnvironmentStore: mem.Environments(), calls: calls}
	projects := &countingProjects{ProjectStore: mem.Projects(), calls: calls}

	var logs store.OperationLogStore = mem.OperationLogs()
	if o.failAudit != nil {
		logs = failingLogs{err: o.failAudit}
	}

	var tx store.Transactor = mem
	if o.failAuditTx != nil {
		tx = failingAuditTx{inner: mem, err: o.failAuditTx}
	}

	audit, err := service.NewAuditLog(store.Repositories{
		Configs:       configs,
		Instances:     instances,
		OperationLogs: logs,
	}, tx, o.strict, nil)
	require.NoError(t, err)

	catalog, err := service.NewCatalog(configs, projects, audit, nil)
	require.NoError(t, err)

	resolver, err := service.NewResolver(configs, instances, audit, o.mode, nil)
	require.NoError(t, err)

	dir, err := service.NewDirectory(envs, time.Minute, nil)
	require.NoError(t, err)

	gate, err := identity.NewStoreGate(mem.Operators(), nil)
	require.NoError(t, err)

	registry, err := service.NewRegistry(service.RegistryDeps{
		Gate:      gate,
		Policy:    o.policy,
		Catalog:   catalog,
		Directory: dir,
		Resolver:  resolver,
		Projects:  projects,
	})
	require.NoError(t, err)

	return &harness{
		mem:      mem,
		registry: registry,
		catalog:  catalog,
		resolver: resolver,
		dir:      dir,
		project:  project,
		calls:    calls,
	}
}

func (h *harness) create(t testingT, key string) {
	t.Helper()
	_, err := h.registry.CreateConfig(context.Background(), testOperator, "core", key, "")
	require.NoError(t, err)
}

func (h *harness) set(t testingT, key, env, group, value string) {
	t.Helper()
	_, err := h.registry.SetValue(context.Background(), testOperator, env, key, group, value)
	require.NoError(t, err)
}

// Counting wrappers record every store call made by the services.

type countingConfigs struct {
	store.ConfigStore
	calls *atomic.Int64
}

func (c *countingConfigs) Create(ctx context.Context, config *domain.Config) error {
	c.calls.Add(1)
	return c.ConfigStore.Create(ctx, config)
}

func (c *countingConfigs) GetByKey(ctx context.Context, key string) (*domain.Config, error) {
	c.calls.Add(1)
	return c.ConfigStore.GetByKey(ctx, key)
}

func (c *countingConfigs) GetByID(ctx context.Context, id int64) (*domain.Config, error) {
	c.calls.Add(1)
	return c.ConfigStore.GetByID(ctx, id)
}

func (c *countingConfigs) FindByPrefix(ctx context.Context, prefix string) ([]*domain.Config, error) {
	c.calls.Add(1)
	return c.ConfigStore.FindByPrefix(ctx, prefix)
}

func (c *countingConfigs) UpdateDescription(ctx context.Context, id int64, d string, at time.Time) error {
	c.calls.Add(1)
	return c.ConfigStore.UpdateDescription(ctx, id, d, at)
}

func (c *countingConfigs) Count(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return c.ConfigStore.Count(ctx)
}

type countingInstances struct {
	store.InstanceStore
	calls *atomic.Int64
}

func (c *countingInstances) Upsert(ctx context.Context, instance *domain.ConfigInstance) error {
	c.calls.Add(1)
	return c.InstanceStore.Upsert(ctx, instance)
}

func (c *countingInstances) Get(ctx context.Context, key domain.InstanceKey) (*domain.ConfigInstance, error) {
	c.calls.Add(1)
	return c.InstanceStore.Get(ctx, key)
}

func (c *countingInstances) GetValuesByKeys(
	ctx context.Context, keys []string, envID int64, group string,
) (map[string]string, error) {
	c.calls.Add(1)
	return c.InstanceStore.GetValuesByKeys(ctx, keys, envID, group)
}

func (c *countingInstances) GetValuesByPrefix(
	ctx context.Context, prefix string, envID int64, group string,
) (map[string]string, error) {
	c.calls.Add(1)
	return c.InstanceStore.GetValuesByPrefix(ctx, prefix, envID, group)
}

type countingEnvironments struct {
	store.EnvironmentStore
	calls *atomic.Int64
}

func (c *countingEnvironments) GetByName(ctx context.Context, name string) (*domain.Environment, error) {
	c.calls.Add(1)
	return c.EnvironmentStore.GetByName(ctx, name)
}

func (c *countingEnvironments) List(ctx context.Context) ([]*domain.Environment, error) {
	c.calls.Add(1)
	return c.EnvironmentStore.List(ctx)
}

type countingProjects struct {
	store.ProjectStore
	calls *atomic.Int64
}

func (c *countingProjects) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	c.calls.Add(1)
	return c.ProjectStore.GetByName(ctx, name)
}

func (c *countingProjects) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	c.calls.Add(1)
	return c.ProjectStore.GetByID(ctx, id)
}

type failingLogs struct {
	err error
}

func (f failingLogs) Append(context.Context, *domain.OperationLog) error {
	return f.err
}

// failingAuditTx runs transactions whose audit sink always fails.
type failingAuditTx struct {
	inner store.Transactor
	err   error
}

func (f failingAuditTx) WithinTx(ctx context.Context, fn store.RepoFn) error {
	return f.inner.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		repos.OperationLogs = failingLogs{err: f.err}
		return fn(ctx, repos)
	})
}

var errAuditDown = errors.New("audit sink unavailable")
