package imagegen

import (
	"fmt"
	"os"
	"time"

	"morning-post/pkg/config"
)

// Provider names accepted by IMAGE_PROVIDER.
const (
	ProviderDALLE    = "dalle"
	ProviderFlux     = "flux"
	ProviderDisabled = "disabled"
)

// DefaultFluxURL is the Together AI image generation endpoint.
const DefaultFluxURL = "https://api.together.xyz/v1/images/generations"

// Config holds configuration for image generation.
type Config struct {
	// Provider selects the implementation: dalle, flux, or disabled.
	Provider string

	// APIKey authenticates against the selected provider.
	APIKey string

	// FluxURL is the Together AI endpoint. Overridable for tests.
	FluxURL string

	// FluxModel is the Flux model identifier.
	FluxModel string

	// Timeout is the maximum duration for one generation call including
	// the image download.
	Timeout time.Duration
}

// LoadConfig loads image generation configuration from environment variables.
//
// Environment variables:
//   - IMAGE_PROVIDER: dalle, flux, or disabled (default: dalle)
//   - OPENAI_API_KEY / FLUX_API_KEY: key for the selected provider
//   - FLUX_API_URL: endpoint override (default: Together AI)
//   - FLUX_MODEL: model override (default: FLUX.1-schnell-Free)
//   - IMAGE_TIMEOUT: per-call timeout (default: 120s)
//
// Returns an error if the configuration is invalid (fail-closed behavior).
func LoadConfig() (*Config, error) {
	provider := config.GetEnvString("IMAGE_PROVIDER", ProviderDALLE)

	var apiKey string
	switch provider {
	case ProviderDALLE:
		apiKey = os.Getenv("OPENAI_API_KEY")
	case ProviderFlux:
		apiKey = os.Getenv("FLUX_API_KEY")
	}

	cfg := &Config{
		Provider:  provider,
		APIKey:    apiKey,
		FluxURL:   config.GetEnvString("FLUX_API_URL", DefaultFluxURL),
		FluxModel: config.GetEnvString("FLUX_MODEL", "black-forest-labs/FLUX.1-schnell-Free"),
		Timeout:   config.GetEnvDuration("IMAGE_TIMEOUT", 120*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid imagegen configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderDALLE, ProviderFlux:
		if c.APIKey == "" {
			return fmt.Errorf("api key required for provider %q", c.Provider)
		}
	case ProviderDisabled:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Provider == ProviderFlux && c.FluxURL == "" {
		return fmt.Errorf("flux url cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// New builds the Generator selected by the configuration.
func New(cfg *Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderDALLE:
		return NewDALLE(cfg), nil
	case ProviderFlux:
		return NewFlux(cfg), nil
	case ProviderDisabled:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
