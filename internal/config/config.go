package config

import (
	"errors"
	"time"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Identity gate modes
const (
	AuthModeStore     = "store"
	AuthModeAllowList = "allowlist"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Directory DirectoryConfig `mapstructure:"directory" validate:"required"`
	Tracing   TracingConfig   `mapstructure:"tracing" validate:"required"`
}

// ServerConfig contains the HTTP server and logging settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig selects the storage driver. URL is required for postgres.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL             string        `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout" validate:"gt=0"`
	Seed            SeedConfig    `mapstructure:"seed"`
}

// SeedConfig lists projects and enabled operators created at startup by
// the memory driver.
type SeedConfig struct {
	Projects    []string `mapstructure:"projects" validate:"dive,required,max=255"`
	OperatorIDs []int64  `mapstructure:"operator_ids" validate:"dive,gt=0"`
}

// AuthConfig selects how operators are verified.
type AuthConfig struct {
	Mode string `mapstructure:"mode" validate:"required,oneof=store allowlist"`
	// OperatorIDs is the allow list used in allowlist mode.
	OperatorIDs []int64 `mapstructure:"operator_ids" validate:"dive,gt=0"`
	// VerifyList makes ListByPrefix check identity like every other call.
	VerifyList bool `mapstructure:"verify_list"`
}

// ResolverConfig controls read resolution.
type ResolverConfig struct {
	// GroupFallback retries a miss on a named group against the default group.
	GroupFallback bool `mapstructure:"group_fallback"`
}

// AuditConfig controls the operation log.
type AuditConfig struct {
	// Strict writes each mutation and its log entry in one transaction.
	Strict bool `mapstructure:"strict"`
}

// DirectoryConfig controls environment resolution.
type DirectoryConfig struct {
	// Environments seeds the memory driver, in ID order. Postgres seeds
	// environments through migrations.
	Environments []string      `mapstructure:"environments" validate:"dive,required,max=32"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" validate:"gt=0"`
}

// TracingConfig controls the OpenTelemetry provider.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter" validate:"required,oneof=stdout none"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	ServiceName string  `mapstructure:"service_name" validate:"required"`
}

// ErrMissingDatabaseURL is returned when the postgres driver has no URL.
var ErrMissingDatabaseURL = errors.New("database.url is required for the postgres driver")

// ErrEmptyAllowList is returned when allowlist mode has no operator IDs.
var ErrEmptyAllowList = errors.New("auth.operator_ids must not be empty in allowlist mode")

// ErrNoEnvironments is returned when the memory driver has nothing to seed.
var ErrNoEnvironments = errors.New("directory.environments must not be empty for the memory driver")

// check enforces the cross-field rules struct tags cannot express.
func (c *Config) check() error {
	if c.Database.Driver == DriverPostgres && c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Auth.Mode == AuthModeAllowList && len(c.Auth.OperatorIDs) == 0 {
		return ErrEmptyAllowList
	}
	if c.Database.Driver == DriverMemory && len(c.Directory.Environments) == 0 {
		return ErrNoEnvironments
	}
	return nil
}
