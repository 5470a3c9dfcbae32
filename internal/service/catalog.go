package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/platform/logger"
	"github.com/phrazzld/confhub/internal/store"
)

// MinPrefixLength is the shortest prefix, in characters, accepted by
// prefix queries.
const MinPrefixLength = 5

func checkPrefix(prefix string) error {
	if utf8.RuneCountInString(prefix) < MinPrefixLength {
		return detail(ErrPrefixTooShort, "Prefix is too short")
	}
	return nil
}

// CreatedMessage is the reply and audit message for a created config.
func CreatedMessage(key, projectName string) string {
	return fmt.Sprintf("Created config %s in project %s", key, projectName)
}

// Catalog owns config identities: creation, lookup and prefix search.
type Catalog struct {
	configs  store.ConfigStore
	projects store.ProjectStore
	audit    *AuditLog
	logger   *slog.Logger
}

// NewCatalog creates a catalog. Mutations go through audit.
func NewCatalog(
	configs store.ConfigStore,
	projects store.ProjectStore,
	audit *AuditLog,
	logger *slog.Logger,
) (*Catalog, error) {
	if configs == nil {
		return nil, errors.New("config store cannot be nil")
	}
	if projects == nil {
		return nil, errors.New("project store cannot be nil")
	}
	if audit == nil {
		return nil, errors.New("audit log cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Catalog{
		configs:  configs,
		projects: projects,
		audit:    audit,
		logger:   logger.With(slog.String("component", "catalog")),
	}, nil
}

// CreateConfig creates a string config owned by projectID.
// Keys are unique across all projects.
func (c *Catalog) CreateConfig(ctx context.Context, projectID int64, key, description string) (*domain.Config, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if err := domain.ValidateKey(key); err != nil {
		return nil, detail(ErrInvalidKey, "Invalid key %s: %v", key, err)
	}

	project, err := c.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, detail(ErrProjectNotFound, "Project %d does not exist", projectID)
		}
		return nil, NewRegistryError("create_config", "failed to look up project", err)
	}

	if _, err := c.configs.GetByKey(ctx, key); err == nil {
		return nil, detail(ErrAlreadyExists, "Config %s already exists", key)
	} else if !errors.Is(err, store.ErrConfigNotFound) {
		return nil, NewRegistryError("create_config", "failed to check for existing config", err)
	}

	config, err := domain.NewConfig(project.ID, key, description)
	if err != nil {
		return nil, detail(ErrInvalidKey, "Invalid key %s: %v", key, err)
	}

	err = c.audit.Mutate(ctx, domain.OperationConfigAdd, &project.ID, CreatedMessage(key, project.Name),
		func(ctx context.Context, repos store.Repositories) error {
			return repos.Configs.Create(ctx, config)
		})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConfigKeyExists):
			// lost a race with a concurrent create
			return nil, detail(ErrAlreadyExists, "Config %s already exists", key)
		case errors.Is(err, store.ErrInvalidEntity):
			return nil, detail(ErrProjectNotFound, "Project %s does not exist", project.Name)
		default:
			log.Error("failed to create config",
				slog.String("error", err.Error()),
				slog.String("key", key))
			return nil, NewRegistryError("create_config", "failed to create config", err)
		}
	}

	log.Info("config created",
		slog.String("key", config.Key),
		slog.Int64("config_id", config.ID),
		slog.String("project", project.Name))
	return config, nil
}

// FindByKey returns the config with key.
func (c *Catalog) FindByKey(ctx context.Context, key string) (*domain.Config, error) {
	config, err := c.configs.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			return nil, detail(ErrConfigNotFound, "Config %s does not exist", key)
		}
		return nil, NewRegistryError("find_config", "failed to look up config", err)
	}
	return config, nil
}

// FindByPrefix returns the configs whose keys start with prefix, in key
// order. Each call is a fresh scan.
func (c *Catalog) FindByPrefix(ctx context.Context, prefix string) ([]*domain.Config, error) {
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}

	configs, err := c.configs.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, NewRegistryError("find_by_prefix", "failed to scan configs", err)
	}
	return configs, nil
}

// UpdateDescription replaces the description of the config with key.
func (c *Catalog) UpdateDescription(ctx context.Context, key, description string) (*domain.Config, error) {
	config, err := c.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	config.UpdateDescription(description)
	message := fmt.Sprintf("Updated description of config %s", key)

	err = c.audit.Mutate(ctx, domain.OperationConfigEdit, &config.ProjectID, message,
		func(ctx context.Context, repos store.Repositories) error {
			return repos.Configs.UpdateDescription(ctx, config.ID, config.Description, config.UpdatedAt)
		})
	if err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			return nil, detail(ErrConfigNotFound, "Config %s does not exist", key)
		}
		return nil, NewRegistryError("update_description", "failed to update config", err)
	}

	return config, nil
}

// Count returns the catalog size.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	n, err := c.configs.Count(ctx)
	if err != nil {
		return 0, NewRegistryError("count_configs", "failed to count configs", err)
	}
	return n, nil
}
