package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/confhub/internal/config"
	"github.com/phrazzld/confhub/internal/platform/logger"
)

// setupAppLogger configures the process logger from cfg and writes to out.
func setupAppLogger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return l, nil
}
