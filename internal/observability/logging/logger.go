package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// NewLogger builds the JSON logger the worker runs with. LOG_LEVEL selects
// the level (debug, info, warn, error; default info). Source locations are
// attached when the level is warn or finer, so error entries in production
// point at the call site.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRunID returns a logger carrying a fresh run identifier. Every
// scheduled pipeline run gets its own ID so entries from overlapping runs
// can be told apart.
func WithRunID(logger *slog.Logger) *slog.Logger {
	return logger.With("run_id", uuid.NewString())
}
