package domain

import (
	"errors"
	"time"
)

// Instance-specific validation errors
var (
	ErrEmptyInstanceConfigID = errors.New("config instance config ID cannot be empty")
	ErrEmptyInstanceEnvID    = errors.New("config instance environment ID cannot be empty")
)

// ConfigInstance is the value of one config for one environment and one
// override group. (ConfigID, EnvironmentID, Group) identifies it; there is at
// most one instance per triple.
type ConfigInstance struct {
	ConfigID      int64     `json:"config_id"`
	EnvironmentID int64     `json:"environment_id"`
	Group         string    `json:"group"`
	Value         string    `json:"value"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InstanceKey is the composite identity of a ConfigInstance.
type InstanceKey struct {
	ConfigID      int64
	EnvironmentID int64
	Group         string
}

// NewConfigInstance creates an instance for the given triple.
// Returns an error if validation fails.
func NewConfigInstance(configID, envID int64, group, value string) (*ConfigInstance, error) {
	now := time.Now().UTC()
	instance := &ConfigInstance{
		ConfigID:      configID,
		EnvironmentID: envID,
		Group:         group,
		Value:         value,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := instance.Validate(); err != nil {
		return nil, err
	}

	return instance, nil
}

// Key returns the instance's composite identity.
func (ci *ConfigInstance) Key() InstanceKey {
	return InstanceKey{ConfigID: ci.ConfigID, EnvironmentID: ci.EnvironmentID, Group: ci.Group}
}

// Validate checks the instance's identity fields. Any group, including the
// empty default group, is legal.
func (ci *ConfigInstance) Validate() error {
	if ci.ConfigID <= 0 {
		return ErrEmptyInstanceConfigID
	}

	if ci.EnvironmentID == NoEnvironment || ci.EnvironmentID < 0 {
		return ErrEmptyInstanceEnvID
	}

	return nil
}
