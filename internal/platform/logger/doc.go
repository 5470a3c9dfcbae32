// Package logger provides structured logging for the registry.
//
// It builds log/slog loggers from configuration and carries request-scoped
// loggers and request IDs through context.Context.
package logger
