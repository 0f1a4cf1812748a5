package transport

import (
	"fmt"
	"strings"
	"time"

	"morning-post/pkg/config"
)

// DefaultBaseURL is the Telegram Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Config contains configuration for the Telegram transport.
type Config struct {
	// BotToken is the Telegram bot token used to authenticate API calls.
	BotToken string

	// BaseURL is the API base URL. Overridable for testing.
	BaseURL string

	// Timeout is the HTTP request timeout for a single API call.
	Timeout time.Duration
}

// LoadConfig reads transport configuration from environment variables.
//
// Environment variables:
//   - TELEGRAM_BOT_TOKEN: Bot token (required)
//   - TELEGRAM_BASE_URL: API base URL (default: https://api.telegram.org)
//   - TELEGRAM_TIMEOUT: Per-request timeout (default: 30s)
func LoadConfig() (Config, error) {
	cfg := Config{
		BotToken: config.GetEnvString("TELEGRAM_BOT_TOKEN", ""),
		BaseURL:  config.GetEnvString("TELEGRAM_BASE_URL", DefaultBaseURL),
		Timeout:  config.GetEnvDuration("TELEGRAM_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
