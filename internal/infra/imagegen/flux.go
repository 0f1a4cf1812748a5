package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"morning-post/internal/resilience/circuitbreaker"
	"morning-post/internal/resilience/retry"
)

// Flux implements Generator using a Flux model on Together AI. The API
// returns the image inline as base64, so no second download round-trip is
// needed.
type Flux struct {
	cfg            *Config
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

type fluxRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type fluxResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// NewFlux creates a Flux image generator.
func NewFlux(cfg *Config) *Flux {
	return &Flux{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.ImageModelConfig()),
	}
}

// Generate implements Generator.
func (f *Flux) Generate(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	start := time.Now()

	cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doGenerate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("image model circuit breaker open, request rejected",
				slog.String("state", f.circuitBreaker.State().String()))
			return nil, fmt.Errorf("image model unavailable: circuit breaker open")
		}
		return nil, err
	}

	image := cbResult.([]byte)
	slog.InfoContext(ctx, "generated image",
		slog.String("provider", ProviderFlux),
		slog.Int("size_bytes", len(image)),
		slog.Duration("duration", time.Since(start)))
	return image, nil
}

func (f *Flux) doGenerate(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(fluxRequest{
		Model:          f.cfg.FluxModel,
		Prompt:         EnhancePrompt(prompt) + ", photorealistic",
		Width:          1024,
		Height:         1024,
		Steps:          4,
		N:              1,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal flux request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.FluxURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build flux request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flux request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: "flux api error"}
	}

	var payload fluxResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode flux response: %w", err)
	}
	if len(payload.Data) == 0 || payload.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("flux api returned no image data")
	}

	image, err := base64.StdEncoding.DecodeString(payload.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode flux image: %w", err)
	}
	return image, nil
}
