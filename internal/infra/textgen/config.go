package textgen

import (
	"fmt"
	"os"
	"time"

	"morning-post/pkg/config"
)

// Provider names accepted by TEXTGEN_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderNoop   = "noop"
)

// Config holds configuration for content generation.
// Configuration is loaded from environment variables with fallback to defaults.
type Config struct {
	// Provider selects the implementation: openai, claude, or noop.
	Provider string

	// APIKey authenticates against the selected provider.
	APIKey string

	// Model is the model identifier. Empty means the provider default.
	Model string

	// MaxTokens is the maximum number of tokens for the full generation
	// response. The simplified tier uses a reduced budget.
	MaxTokens int

	// Timeout is the maximum duration for a single generation call.
	Timeout time.Duration
}

// LoadConfig loads generation configuration from environment variables.
//
// Environment variables:
//   - TEXTGEN_PROVIDER: openai, claude, or noop (default: openai)
//   - OPENAI_API_KEY / ANTHROPIC_API_KEY: key for the selected provider
//   - TEXTGEN_MODEL: model override (default: provider-specific)
//   - TEXTGEN_MAX_TOKENS: response token budget (default: 2500)
//   - TEXTGEN_TIMEOUT: per-call timeout (default: 60s)
//
// Returns an error if the configuration is invalid (fail-closed behavior).
func LoadConfig() (*Config, error) {
	provider := config.GetEnvString("TEXTGEN_PROVIDER", ProviderOpenAI)

	var apiKey string
	switch provider {
	case ProviderOpenAI:
		apiKey = os.Getenv("OPENAI_API_KEY")
	case ProviderClaude:
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	cfg := &Config{
		Provider:  provider,
		APIKey:    apiKey,
		Model:     os.Getenv("TEXTGEN_MODEL"),
		MaxTokens: config.GetEnvInt("TEXTGEN_MAX_TOKENS", 2500),
		Timeout:   config.GetEnvDuration("TEXTGEN_TIMEOUT", 60*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid textgen configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderClaude:
		if c.APIKey == "" {
			return fmt.Errorf("api key required for provider %q", c.Provider)
		}
	case ProviderNoop:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// New builds the Generator selected by the configuration.
func New(cfg *Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderClaude:
		return NewClaude(cfg), nil
	case ProviderNoop:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
