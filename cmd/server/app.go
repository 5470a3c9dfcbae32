package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/confhub/internal/config"
	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/memory"
	"github.com/phrazzld/confhub/internal/platform/postgres"
	"github.com/phrazzld/confhub/internal/platform/tracing"
	"github.com/phrazzld/confhub/internal/service"
	"github.com/phrazzld/confhub/internal/service/identity"
	"github.com/phrazzld/confhub/internal/store"
	"go.opentelemetry.io/otel/trace"
)

// backend is the set of stores the services run on.
type backend struct {
	repos     store.Repositories
	envs      store.EnvironmentStore
	projects  store.ProjectStore
	operators store.OperatorStore
	tx        store.Transactor
}

func newPostgresBackend(db *sql.DB, logger *slog.Logger) *backend {
	stores := postgres.NewStores(db, logger)
	return &backend{
		repos:     stores.Repositories,
		envs:      stores.Environments,
		projects:  stores.Projects,
		operators: stores.Operators,
		tx:        stores.Tx,
	}
}

// newMemoryBackend builds a memory store seeded from cfg.
func newMemoryBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	mem := memory.New(cfg.Directory.Environments, logger)

	for _, name := range cfg.Database.Seed.Projects {
		if err := mem.Projects().Create(ctx, &domain.Project{Name: name}); err != nil {
			return nil, fmt.Errorf("failed to seed project %s: %w", name, err)
		}
	}
	for _, id := range cfg.Database.Seed.OperatorIDs {
		op := &domain.Operator{ID: id, Name: fmt.Sprintf("operator-%d", id), Enabled: true}
		if err := mem.Operators().Create(ctx, op); err != nil {
			return nil, fmt.Errorf("failed to seed operator %d: %w", id, err)
		}
	}

	logger.Info("memory store seeded",
		slog.Int("environments", len(cfg.Directory.Environments)),
		slog.Int("projects", len(cfg.Database.Seed.Projects)),
		slog.Int("operators", len(cfg.Database.Seed.OperatorIDs)))

	return &backend{
		repos: store.Repositories{
			Configs:       mem.Configs(),
			Instances:     mem.Instances(),
			OperationLogs: mem.OperationLogs(),
		},
		envs:      mem.Environments(),
		projects:  mem.Projects(),
		operators: mem.Operators(),
		tx:        mem,
	}, nil
}

// newGate builds the identity gate selected by cfg.
func newGate(cfg *config.Config, operators store.OperatorStore, logger *slog.Logger) (identity.Gate, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeAllowList:
		return identity.NewAllowListGate(cfg.Auth.OperatorIDs), nil
	case config.AuthModeStore:
		return identity.NewStoreGate(operators, logger)
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}
}

// newRegistry wires the registry services over b.
func newRegistry(cfg *config.Config, b *backend, tracer trace.Tracer, logger *slog.Logger) (*service.Registry, error) {
	audit, err := service.NewAuditLog(b.repos, b.tx, cfg.Audit.Strict, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}

	catalog, err := service.NewCatalog(b.repos.Configs, b.projects, audit, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	mode := service.ModeExact
	if cfg.Resolver.GroupFallback {
		mode = service.ModeDefaultFallback
	}
	resolver, err := service.NewResolver(b.repos.Configs, b.repos.Instances, audit, mode, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	directory, err := service.NewDirectory(b.envs, cfg.Directory.CacheTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	gate, err := newGate(cfg, b.operators, logger)
	if err != nil {
		return nil, err
	}

	return service.NewRegistry(service.RegistryDeps{
		Gate:      gate,
		Policy:    service.DefaultPolicy().WithIdentity(service.OpListByPrefix, cfg.Auth.VerifyList),
		Catalog:   catalog,
		Directory: directory,
		Resolver:  resolver,
		Projects:  b.projects,
		Tracer:    tracer,
		Logger:    logger,
	})
}

// application holds the shared dependencies of the server.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	tracing  *tracing.Provider
	backend  *backend
	registry *service.Registry
}

// newApplication opens the configured backend and wires the services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: logger}

	var err error
	app.tracing, err = tracing.NewProvider(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		SampleRate:  cfg.Tracing.SampleRate,
		ServiceName: cfg.Tracing.ServiceName,
		Output:      os.Stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		app.db, err = setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			app.cleanup(ctx)
			return nil, err
		}
		app.backend = newPostgresBackend(app.db, logger)
	case config.DriverMemory:
		app.backend, err = newMemoryBackend(ctx, cfg, logger)
		if err != nil {
			app.cleanup(ctx)
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	app.registry, err = newRegistry(cfg, app.backend, app.tracing.Tracer(), logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	logger.Info("application initialized",
		slog.String("driver", cfg.Database.Driver),
		slog.String("auth_mode", cfg.Auth.Mode))
	return app, nil
}

// Run serves HTTP until ctx is done or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the application's resources.
func (app *application) cleanup(ctx context.Context) {
	var errs []error
	if app.tracing != nil {
		errs = append(errs, app.tracing.Shutdown(ctx))
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error("error during shutdown", slog.String("error", err.Error()))
	}

	app.logger.Info("application shutdown completed")
}
