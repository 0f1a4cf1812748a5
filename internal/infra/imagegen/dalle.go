package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"morning-post/internal/resilience/circuitbreaker"
)

// DALLE implements Generator using DALL-E 3. The API returns a short-lived
// URL; the generated image is downloaded immediately.
type DALLE struct {
	client         *openai.Client
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	timeout        time.Duration
}

// NewDALLE creates a DALL-E image generator.
func NewDALLE(cfg *Config) *DALLE {
	return &DALLE{
		client:         openai.NewClient(cfg.APIKey),
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		circuitBreaker: circuitbreaker.New(circuitbreaker.ImageModelConfig()),
		timeout:        cfg.Timeout,
	}
}

// Generate implements Generator.
func (d *DALLE) Generate(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()

	cbResult, err := d.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := d.client.CreateImage(ctx, openai.ImageRequest{
			Model:   openai.CreateImageModelDallE3,
			Prompt:  EnhancePrompt(prompt),
			Size:    openai.CreateImageSize1024x1024,
			Quality: openai.CreateImageQualityStandard,
			N:       1,
		})
		if err != nil {
			return nil, fmt.Errorf("dall-e api error: %w", err)
		}
		if len(resp.Data) == 0 || resp.Data[0].URL == "" {
			return nil, fmt.Errorf("dall-e api returned no image url")
		}
		return d.download(ctx, resp.Data[0].URL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("image model circuit breaker open, request rejected",
				slog.String("state", d.circuitBreaker.State().String()))
			return nil, fmt.Errorf("image model unavailable: circuit breaker open")
		}
		return nil, err
	}

	image := cbResult.([]byte)
	slog.InfoContext(ctx, "generated image",
		slog.String("provider", ProviderDALLE),
		slog.Int("size_bytes", len(image)),
		slog.Duration("duration", time.Since(start)))
	return image, nil
}

func (d *DALLE) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return data, nil
}
