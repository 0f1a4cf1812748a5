package holidays

import (
	"fmt"
	"os"
	"strings"
	"time"

	"morning-post/pkg/config"
)

// Config holds configuration for the Calendarific client.
// Configuration is loaded from environment variables with fallback to defaults.
type Config struct {
	// APIKey is the Calendarific API key. Required for the HTTP client.
	APIKey string

	// BaseURL is the API endpoint. Overridable for tests.
	BaseURL string

	// Countries are the ISO country codes queried per date. The first
	// country's holidays are taken as-is; the rest are filtered to
	// food-related holidays only.
	Countries []string

	// Timeout is the maximum duration for a single API call.
	Timeout time.Duration
}

// DefaultBaseURL is the production Calendarific endpoint.
const DefaultBaseURL = "https://calendarific.com/api/v2/holidays"

// LoadConfig loads the Calendarific configuration from environment variables.
//
// Environment variables:
//   - CALENDARIFIC_API_KEY: API key (required)
//   - HOLIDAYS_COUNTRIES: comma-separated country codes (default: "RU,US")
//   - HOLIDAYS_TIMEOUT: per-call timeout (default: 10s)
//
// Returns an error if the configuration is invalid.
func LoadConfig() (*Config, error) {
	countries := strings.Split(config.GetEnvString("HOLIDAYS_COUNTRIES", "RU,US"), ",")
	for i := range countries {
		countries[i] = strings.TrimSpace(countries[i])
	}

	cfg := &Config{
		APIKey:    os.Getenv("CALENDARIFIC_API_KEY"),
		BaseURL:   config.GetEnvString("HOLIDAYS_BASE_URL", DefaultBaseURL),
		Countries: countries,
		Timeout:   config.GetEnvDuration("HOLIDAYS_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid holidays configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base url cannot be empty")
	}
	if len(c.Countries) == 0 {
		return fmt.Errorf("at least one country code is required")
	}
	for _, country := range c.Countries {
		if len(country) != 2 {
			return fmt.Errorf("invalid country code %q", country)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
