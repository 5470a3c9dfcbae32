package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/confhub/internal/config"
)

// loadAppConfig loads the configuration from path, defaults and the
// environment.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logConfig logs the settings that shape request handling.
func logConfig(cfg *config.Config, logger *slog.Logger) {
	logger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("driver", cfg.Database.Driver),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Bool("verify_list", cfg.Auth.VerifyList),
		slog.Bool("group_fallback", cfg.Resolver.GroupFallback),
		slog.Bool("strict_audit", cfg.Audit.Strict),
		slog.Bool("tracing", cfg.Tracing.Enabled))

	if cfg.Database.URL != "" {
		logger.Debug("database configuration", slog.Bool("url_present", true))
	}
}
