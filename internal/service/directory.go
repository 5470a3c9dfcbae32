package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

// DefaultDirectoryTTL is how long resolved environments stay cached.
const DefaultDirectoryTTL = 5 * time.Minute

// Directory resolves environment names to environments.
// Successful lookups are cached; misses are not, so an environment seeded
// after startup is found on the next call.
type Directory struct {
	envs   store.EnvironmentStore
	cache  *cache.Cache
	logger *slog.Logger
}

// NewDirectory creates a directory over envs. A ttl <= 0 uses DefaultDirectoryTTL.
func NewDirectory(envs store.EnvironmentStore, ttl time.Duration, logger *slog.Logger) (*Directory, error) {
	if envs == nil {
		return nil, errors.New("environment store cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultDirectoryTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Directory{
		envs:   envs,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger.With(slog.String("component", "directory")),
	}, nil
}

// ResolveEnvironment returns the environment called name. The returned
// environment always has a usable ID.
func (d *Directory) ResolveEnvironment(ctx context.Context, name string) (domain.Environment, error) {
	if cached, ok := d.cache.Get(name); ok {
		return cached.(domain.Environment), nil
	}

	env, err := d.envs.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrEnvironmentNotFound) {
			return domain.Environment{}, detail(ErrInvalidEnvironment, "Invalid environment %s", name)
		}
		return domain.Environment{}, NewRegistryError("resolve_environment", "failed to look up environment", err)
	}

	if !env.Valid() {
		logger.FromContextOrDefault(ctx, d.logger).Error("store returned sentinel environment ID",
			slog.String("env", name))
		return domain.Environment{}, detail(ErrInvalidEnvironment, "Invalid environment %s", name)
	}

	d.cache.SetDefault(name, *env)
	return *env, nil
}

// ListEnvironments returns every known environment in ID order.
func (d *Directory) ListEnvironments(ctx context.Context) ([]domain.Environment, error) {
	envs, err := d.envs.List(ctx)
	if err != nil {
		return nil, NewRegistryError("list_environments", "failed to list environments", err)
	}

	result := make([]domain.Environment, 0, len(envs))
	for _, env := range envs {
		result = append(result, *env)
	}
	return result, nil
}

// Flush drops every cached lookup.
func (d *Directory) Flush() {
	d.cache.Flush()
}
