package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/redact"
	"github.com/phrazzld/confhub/internal/store"
)

// Mode selects how reads treat a miss on a named group.
type Mode int

const (
	// ModeExact returns only values stored for the exact group.
	ModeExact Mode = iota
	// ModeDefaultFallback retries a miss on a named group against the
	// default group.
	ModeDefaultFallback
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeDefaultFallback:
		return "default_fallback"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// SetMessage is the reply and audit message for a set value.
func SetMessage(key, envName, group, value string) string {
	return fmt.Sprintf("Set config %s in env %s group [%s] to %s", key, envName, group, value)
}

// Resolver writes config values and resolves them for an environment and group.
type Resolver struct {
	configs   store.ConfigStore
	instances store.InstanceStore
	audit     *AuditLog
	mode      Mode
	logger    *slog.Logger
}

// NewResolver creates a resolver. Writes go through audit.
func NewResolver(
	configs store.ConfigStore,
	instances store.InstanceStore,
	audit *AuditLog,
	mode Mode,
	logger *slog.Logger,
) (*Resolver, error) {
	if configs == nil {
		return nil, errors.New("config store cannot be nil")
	}
	if instances == nil {
		return nil, errors.New("instance store cannot be nil")
	}
	if audit == nil {
		return nil, errors.New("audit log cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		configs:   configs,
		instances: instances,
		audit:     audit,
		mode:      mode,
		logger:    logger.With(slog.String("component", "resolver")),
	}, nil
}

// Mode returns the resolver's read mode.
func (r *Resolver) Mode() Mode {
	return r.mode
}

// SetValue stores value for (configID, env, group), replacing any previous
// value for that triple.
func (r *Resolver) SetValue(
	ctx context.Context,
	configID int64,
	env domain.Environment,
	group, value string,
) (*domain.ConfigInstance, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if !env.Valid() {
		return nil, detail(ErrInvalidEnvironment, "Invalid environment %s", env.Name)
	}

	config, err := r.configs.GetByID(ctx, configID)
	if err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			return nil, detail(ErrConfigNotFound, "Config %d does not exist", configID)
		}
		return nil, NewRegistryError("set_value", "failed to look up config", err)
	}

	if err := config.ValidateValue(value); err != nil {
		return nil, detail(ErrInvalidValue, "Invalid value for %s config %s", config.Type, config.Key)
	}

	instance, err := domain.NewConfigInstance(config.ID, env.ID, group, value)
	if err != nil {
		return nil, NewRegistryError("set_value", "invalid instance", err)
	}

	err = r.audit.Mutate(ctx, domain.OperationConfigEdit, nil,
		SetMessage(config.Key, env.Name, group, value),
		func(ctx context.Context, repos store.Repositories) error {
			return repos.Instances.Upsert(ctx, instance)
		})
	if err != nil {
		log.Error("failed to set config value",
			slog.String("error", err.Error()),
			slog.String("key", config.Key),
			slog.String("env", env.Name),
			slog.String("group", group))
		return nil, NewRegistryError("set_value", "failed to store value", err)
	}

	log.Info("config value set",
		slog.String("key", config.Key),
		slog.String("env", env.Name),
		slog.String("group", group),
		slog.String("value", redact.Value(config.Key, value)))
	return instance, nil
}

// GetValue returns the value stored for (key, env, group).
func (r *Resolver) GetValue(ctx context.Context, key string, env domain.Environment, group string) (string, error) {
	notFound := func() error {
		return detail(ErrInstanceNotFound, "Config %s has no value in env %s group [%s]", key, env.Name, group)
	}

	config, err := r.configs.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			return "", notFound()
		}
		return "", NewRegistryError("get_value", "failed to look up config", err)
	}

	value, err := r.lookup(ctx, config.ID, env.ID, group)
	if errors.Is(err, store.ErrInstanceNotFound) && r.fallsBack(group) {
		value, err = r.lookup(ctx, config.ID, env.ID, domain.DefaultGroup)
	}
	if err != nil {
		if errors.Is(err, store.ErrInstanceNotFound) {
			return "", notFound()
		}
		return "", NewRegistryError("get_value", "failed to look up value", err)
	}

	return value, nil
}

// GetValues returns key -> value for each of keys that has a value for
// (env, group). Keys without one are omitted.
func (r *Resolver) GetValues(
	ctx context.Context,
	keys []string,
	env domain.Environment,
	group string,
) (map[string]string, error) {
	values, err := r.instances.GetValuesByKeys(ctx, keys, env.ID, group)
	if err != nil {
		return nil, NewRegistryError("get_values", "failed to look up values", err)
	}

	if r.fallsBack(group) && len(values) < len(keys) {
		missing := make([]string, 0, len(keys)-len(values))
		for _, key := range keys {
			if _, ok := values[key]; !ok {
				missing = append(missing, key)
			}
		}

		defaults, err := r.instances.GetValuesByKeys(ctx, missing, env.ID, domain.DefaultGroup)
		if err != nil {
			return nil, NewRegistryError("get_values", "failed to look up default values", err)
		}
		mergeMissing(values, defaults)
	}

	return values, nil
}

// GetValuesByPrefix returns key -> value for each config whose key starts
// with prefix and that has a value for (env, group).
func (r *Resolver) GetValuesByPrefix(
	ctx context.Context,
	prefix string,
	env domain.Environment,
	group string,
) (map[string]string, error) {
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}

	values, err := r.instances.GetValuesByPrefix(ctx, prefix, env.ID, group)
	if err != nil {
		return nil, NewRegistryError("get_values_by_prefix", "failed to look up values", err)
	}

	if r.fallsBack(group) {
		defaults, err := r.instances.GetValuesByPrefix(ctx, prefix, env.ID, domain.DefaultGroup)
		if err != nil {
			return nil, NewRegistryError("get_values_by_prefix", "failed to look up default values", err)
		}
		mergeMissing(values, defaults)
	}

	return values, nil
}

func (r *Resolver) fallsBack(group string) bool {
	return r.mode == ModeDefaultFallback && group != domain.DefaultGroup
}

func (r *Resolver) lookup(ctx context.Context, configID, envID int64, group string) (string, error) {
	instance, err := r.instances.Get(ctx, domain.InstanceKey{
		ConfigID:      configID,
		EnvironmentID: envID,
		Group:         group,
	})
	if err != nil {
		return "", err
	}
	return instance.Value, nil
}

func mergeMissing(dst, src map[string]string) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
