package memory

import (
	"context"
	"fmt"

	"github.com/phrazzld/confhub/internal/domain"
	"github.com/phrazzld/confhub/internal/store"
)

type instanceStore struct {
	binding
}

var _ store.InstanceStore = (*instanceStore)(nil)

// Upsert implements store.InstanceStore.Upsert.
func (s *instanceStore) Upsert(_ context.Context, instance *domain.ConfigInstance) error {
	if err := instance.Validate(); err != nil {
		return err
	}

	return s.write(func(t *txn) error {
		if _, ok := t.configIDs.Get(idKey(instance.ConfigID)); !ok {
			return fmt.Errorf("%w: config %d not found", store.ErrInvalidEntity, instance.ConfigID)
		}
		if _, ok := t.envIDs.Get(idKey(instance.EnvironmentID)); !ok {
			return fmt.Errorf("%w: environment %d not found", store.ErrInvalidEntity, instance.EnvironmentID)
		}

		k := instanceKey(instance.Key())
		stored := *instance
		if existing, ok := t.instances.Get(k); ok {
			stored.CreatedAt = existing.CreatedAt
		}
		t.instances.Insert(k, &stored)
		return nil
	})
}

// Get implements store.InstanceStore.Get.
func (s *instanceStore) Get(_ context.Context, key domain.InstanceKey) (*domain.ConfigInstance, error) {
	instance, ok := s.view().instances.Get(instanceKey(key))
	if !ok {
		return nil, store.ErrInstanceNotFound
	}
	i := *instance
	return &i, nil
}

// GetValuesByKeys implements store.InstanceStore.GetValuesByKeys.
func (s *instanceStore) GetValuesByKeys(
	_ context.Context,
	keys []string,
	envID int64,
	group string,
) (map[string]string, error) {
	v := s.view()
	values := make(map[string]string, len(keys))

	for _, key := range keys {
		config, ok := v.configs.Get([]byte(key))
		if !ok {
			continue
		}
		if value, ok := v.value(config.ID, envID, group); ok {
			values[key] = value
		}
	}

	return values, nil
}

// GetValuesByPrefix implements store.InstanceStore.GetValuesByPrefix.
func (s *instanceStore) GetValuesByPrefix(
	_ context.Context,
	prefix string,
	envID int64,
	group string,
) (map[string]string, error) {
	v := s.view()
	values := make(map[string]string)

	v.configs.WalkPrefix([]byte(prefix), func(k []byte, config *domain.Config) bool {
		if value, ok := v.value(config.ID, envID, group); ok {
			values[string(k)] = value
		}
		return false
	})

	return values, nil
}

func (v view) value(configID, envID int64, group string) (string, bool) {
	instance, ok := v.instances.Get(instanceKey(domain.InstanceKey{
		ConfigID:      configID,
		EnvironmentID: envID,
		Group:         group,
	}))
	if !ok {
		return "", false
	}
	return instance.Value, true
}
