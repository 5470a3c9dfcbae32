package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/store"
)

type configStore struct {
	binding
}

var _ store.ConfigStore = (*configStore)(nil)

// Create implements store.ConfigStore.Create.
func (s *configStore) Create(ctx context.Context, config *domain.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	err := s.write(func(t *txn) error {
		if _, exists := t.configs.Get([]byte(config.Key)); exists {
			return fmt.Errorf("%w: %s", store.ErrConfigKeyExists, config.Key)
		}

		if _, exists := t.projectIDs.Get(idKey(config.ProjectID)); !exists {
			return fmt.Errorf("%w: project with ID %d not found",
				store.ErrInvalidEntity, config.ProjectID)
		}

		config.ID = t.nextConfigID
		t.nextConfigID++

		stored := *config
		t.configs.Insert([]byte(stored.Key), &stored)
		t.configIDs.Insert(idKey(stored.ID), stored.Key)
		t.configCount++
		return nil
	})
	if err != nil {
		return err
	}

	s.log(ctx).Info("config created",
		slog.Int64("config_id", config.ID),
		slog.String("key", config.Key),
		slog.Int64("project_id", config.ProjectID))
	return nil
}

// GetByKey implements store.ConfigStore.GetByKey.
func (s *configStore) GetByKey(_ context.Context, key string) (*domain.Config, error) {
	config, ok := s.view().configs.Get([]byte(key))
	if !ok {
		return nil, store.ErrConfigNotFound
	}
	c := *config
	return &c, nil
}

// GetByID implements store.ConfigStore.GetByID.
func (s *configStore) GetByID(_ context.Context, id int64) (*domain.Config, error) {
	v := s.view()
	key, ok := v.configIDs.Get(idKey(id))
	if !ok {
		return nil, store.ErrConfigNotFound
	}
	config, ok := v.configs.Get([]byte(key))
	if !ok {
		return nil, store.ErrConfigNotFound
	}
	c := *config
	return &c, nil
}

// FindByPrefix implements store.ConfigStore.FindByPrefix.
// The walk visits keys in byte order.
func (s *configStore) FindByPrefix(_ context.Context, prefix string) ([]*domain.Config, error) {
	configs := make([]*domain.Config, 0)
	s.view().configs.WalkPrefix([]byte(prefix), func(_ []byte, config *domain.Config) bool {
		c := *config
		configs = append(configs, &c)
		return false
	})
	return configs, nil
}

// UpdateDescription implements store.ConfigStore.UpdateDescription.
func (s *configStore) UpdateDescription(
	_ context.Context,
	id int64,
	description string,
	updatedAt time.Time,
) error {
	return s.write(func(t *txn) error {
		key, ok := t.configIDs.Get(idKey(id))
		if !ok {
			return store.ErrConfigNotFound
		}
		current, ok := t.configs.Get([]byte(key))
		if !ok {
			return store.ErrConfigNotFound
		}

		next := *current
		next.Description = description
		next.UpdatedAt = updatedAt
		t.configs.Insert([]byte(key), &next)
		return nil
	})
}

// Count implements store.ConfigStore.Count.
func (s *configStore) Count(_ context.Context) (int, error) {
	return s.view().configCount, nil
}
