package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ConfigType is the primitive type of a config value.
type ConfigType string

// Supported config types. Values are stored as strings; the type only
// constrains what a value may look like.
const (
	ConfigTypeString ConfigType = "string"
	ConfigTypeInt    ConfigType = "int"
	ConfigTypeBool   ConfigType = "bool"
)

// MaxKeyLength bounds the length of a config key in characters.
const MaxKeyLength = 255

// Config-specific validation errors
var (
	ErrEmptyConfigKey       = errors.New("config key cannot be empty")
	ErrConfigKeyTooLong     = fmt.Errorf("config key cannot exceed %d characters", MaxKeyLength)
	ErrConfigKeyInvalidChar = errors.New("config key cannot contain whitespace or commas")
	ErrEmptyConfigProjectID = errors.New("config project ID cannot be empty")
	ErrInvalidConfigValue   = errors.New("value does not match config type")
)

// Config is a named, typed configuration item owned by a project.
// Key is unique across the whole catalog regardless of project.
type Config struct {
	ID          int64      `json:"id"`
	Key         string     `json:"key"`
	Description string     `json:"description"`
	Type        ConfigType `json:"type"`
	ProjectID   int64      `json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewConfig creates a string config for the given project.
// Returns an error if validation fails.
func NewConfig(projectID int64, key, description string) (*Config, error) {
	now := time.Now().UTC()
	config := &Config{
		Key:         key,
		Description: description,
		Type:        ConfigTypeString,
		ProjectID:   projectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the config's key, type and owner.
func (c *Config) Validate() error {
	if err := ValidateKey(c.Key); err != nil {
		return err
	}

	if c.ProjectID <= 0 {
		return ErrEmptyConfigProjectID
	}

	if !c.Type.Valid() {
		return ErrInvalidConfigType
	}

	return nil
}

// UpdateDescription replaces the description, the only mutable metadata field.
func (c *Config) UpdateDescription(description string) {
	c.Description = description
	c.UpdatedAt = time.Now().UTC()
}

// ValidateValue checks that value can be read as the config's type.
func (c *Config) ValidateValue(value string) error {
	return c.Type.ValidateValue(value)
}

// ValidateKey checks a key without building a Config.
// Keys are opaque, case-sensitive character sequences; whitespace and commas
// are rejected because batch reads address keys as a comma-separated list.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyConfigKey
	}

	if utf8.RuneCountInString(key) > MaxKeyLength {
		return ErrConfigKeyTooLong
	}

	if strings.ContainsFunc(key, func(r rune) bool { return r == ',' || unicode.IsSpace(r) }) {
		return ErrConfigKeyInvalidChar
	}

	return nil
}

// Valid reports whether t is a supported config type.
func (t ConfigType) Valid() bool {
	switch t {
	case ConfigTypeString, ConfigTypeInt, ConfigTypeBool:
		return true
	default:
		return false
	}
}

// ValidateValue reports whether value is well-formed for t.
func (t ConfigType) ValidateValue(value string) error {
	switch t {
	case ConfigTypeString:
		return nil
	case ConfigTypeInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("%w: %q is not an int", ErrInvalidConfigValue, value)
		}
		return nil
	case ConfigTypeBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %q is not a bool", ErrInvalidConfigValue, value)
		}
		return nil
	default:
		return ErrInvalidConfigType
	}
}
