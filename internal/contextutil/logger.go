// Package contextutil carries a request-scoped slog.Logger through
// context.Context. HTTP middleware attaches a logger annotated with the
// request method and path; the pipeline, extractor, and store layers pull
// it back out so every log line for one request shares those fields.
package contextutil

import (
	"context"
	"log/slog"
)

type contextKey string

const loggerKey contextKey = "logger"

// LoggerFromContext returns the logger attached to ctx, or the process
// default when none was attached (background jobs, tests).
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctxLogger := ctx.Value(loggerKey); ctxLogger != nil {
		if l, ok := ctxLogger.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

// LoggerKey exposes the context key so middleware can attach the logger.
func LoggerKey() contextKey {
	return loggerKey
}
