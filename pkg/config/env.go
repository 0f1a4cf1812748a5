// Package config provides small helpers for reading configuration from
// environment variables with defaults, warning logs, and validation.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// GetEnvString returns the environment variable's value, or defaultValue
// when the variable is unset or empty. No validation, no logging.
//
// Example:
//
//	channel := GetEnvString("POST_CHANNEL_ID", "@utro_channel")
func GetEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt reads an integer environment variable. A value that does not
// parse falls back to defaultValue with a warning, so a typo in deployment
// config degrades the setting instead of crashing the worker.
//
// Example:
//
//	port := GetEnvInt("METRICS_PORT", 9090)
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		warnBadEnv("integer", key, raw, strconv.Itoa(defaultValue), err)
		return defaultValue
	}
	return value
}

// GetEnvBool reads a boolean environment variable in strconv.ParseBool
// syntax ("1", "t", "true", "0", "f", "false", any casing of the words).
// An unparseable value falls back to defaultValue with a warning.
//
// Example:
//
//	autoPublish := GetEnvBool("POST_AUTO_PUBLISH", true)
func GetEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		warnBadEnv("boolean", key, raw, strconv.FormatBool(defaultValue), err)
		return defaultValue
	}
	return value
}

// GetEnvDuration reads a duration environment variable in time.ParseDuration
// syntax ("30s", "5m", "1h30m"). An unparseable value falls back to
// defaultValue with a warning.
//
// Example:
//
//	timeout := GetEnvDuration("GENERATION_TIMEOUT", 10*time.Minute)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		warnBadEnv("duration", key, raw, defaultValue.String(), err)
		return defaultValue
	}
	return value
}

func warnBadEnv(kind, key, raw, fallback string, err error) {
	slog.Warn("invalid "+kind+" in environment variable, using default",
		slog.String("key", key),
		slog.String("value", raw),
		slog.String("default", fallback),
		slog.String("error", err.Error()))
}
