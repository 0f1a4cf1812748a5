package worker

import (
	"fmt"
	"log/slog"
	"time"

	"morning-post/pkg/config"
)

// Config holds the configuration for the worker component: the daily post
// schedule, its timezone, and the operational limits around a run.
//
// Loading follows a fail-open strategy: an invalid environment value is
// replaced by its default with a warning, never a startup failure. A missed
// morning post because of a typo in a cron expression is worse than running
// on the default schedule.
type Config struct {
	// CronSchedule is the cron expression for the daily post.
	// Format: "minute hour day month weekday", e.g. "0 8 * * *".
	CronSchedule string

	// Timezone is the IANA timezone name the schedule is evaluated in.
	Timezone string

	// GenerationTimeout bounds one full pipeline run (assemble + publish).
	GenerationTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535.
	HealthPort int
}

// DefaultConfig returns the production defaults: post every day at 08:00
// Moscow time, bound a run to 10 minutes, health checks on 9091.
func DefaultConfig() Config {
	return Config{
		CronSchedule:      "0 8 * * *",
		Timezone:          "Europe/Moscow",
		GenerationTimeout: 10 * time.Minute,
		HealthPort:        9091,
	}
}

// Validate checks all fields and returns the aggregated errors, if any.
//
// Validation rules:
//   - CronSchedule: valid 5-field cron expression (robfig/cron parser)
//   - Timezone: valid IANA timezone name (time.LoadLocation)
//   - GenerationTimeout: between 1 minute and 1 hour
//   - HealthPort: between 1024 and 65535
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDurationRange(c.GenerationTimeout, 1*time.Minute, 1*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("generation timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables.
// Each field is validated independently; an invalid value falls back to the
// default with a warning log and a metrics increment. The returned config is
// always valid.
//
// Environment variables:
//   - POST_CRON_SCHEDULE: cron expression (default: "0 8 * * *")
//   - POST_TIMEZONE: IANA timezone name (default: "Europe/Moscow")
//   - GENERATION_TIMEOUT: duration string, e.g. "10m" (default: 10 minutes)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) Config {
	cfg := DefaultConfig()
	def := DefaultConfig()
	fallbackApplied := false

	fallback := func(field, envKey string, err error) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("env_key", envKey),
			slog.Any("error", err))
	}

	cfg.CronSchedule = config.GetEnvString("POST_CRON_SCHEDULE", def.CronSchedule)
	if err := config.ValidateCronSchedule(cfg.CronSchedule); err != nil {
		fallback("cron_schedule", "POST_CRON_SCHEDULE", err)
		cfg.CronSchedule = def.CronSchedule
	}

	cfg.Timezone = config.GetEnvString("POST_TIMEZONE", def.Timezone)
	if err := config.ValidateTimezone(cfg.Timezone); err != nil {
		fallback("timezone", "POST_TIMEZONE", err)
		cfg.Timezone = def.Timezone
	}

	cfg.GenerationTimeout = config.GetEnvDuration("GENERATION_TIMEOUT", def.GenerationTimeout)
	if err := config.ValidateDurationRange(cfg.GenerationTimeout, 1*time.Minute, 1*time.Hour); err != nil {
		fallback("generation_timeout", "GENERATION_TIMEOUT", err)
		cfg.GenerationTimeout = def.GenerationTimeout
	}

	cfg.HealthPort = config.GetEnvInt("WORKER_HEALTH_PORT", def.HealthPort)
	if err := config.ValidateIntRange(cfg.HealthPort, 1024, 65535); err != nil {
		fallback("health_port", "WORKER_HEALTH_PORT", err)
		cfg.HealthPort = def.HealthPort
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return cfg
}

// Location resolves the configured timezone. Call after Validate or
// LoadConfigFromEnv; an invalid name falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
