package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/confhub/internal/config"
	"github.com/phrazzld/confhub/internal/platform/postgres"
)

// runMigrations applies command to the configured postgres database.
func runMigrations(ctx context.Context, cfg *config.Config, command postgres.MigrationCommand, logger *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations require the %s driver, configured driver is %s",
			config.DriverPostgres, cfg.Database.Driver)
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	logger.Info("executing migrations", slog.String("command", string(command)))
	if err := postgres.Migrate(ctx, db, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
