package textgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"morning-post/internal/resilience/circuitbreaker"
)

// Claude implements Generator using Anthropic's Messages API. Claude has no
// JSON response mode, so the prompts demand bare JSON and the parser strips
// a stray code fence if one appears.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	model          string
	maxTokens      int
	timeout        time.Duration
}

// NewClaude creates a Claude content generator.
func NewClaude(cfg *Config) *Claude {
	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}

	slog.Info("Initialized Claude content generator",
		slog.String("model", model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.TextModelConfig()),
		model:          model,
		maxTokens:      cfg.MaxTokens,
		timeout:        cfg.Timeout,
	}
}

// Generate implements Generator.
func (c *Claude) Generate(ctx context.Context, req Request) (*Content, error) {
	raw, err := c.complete(ctx, systemPrompt(req.RecipeType), userPrompt(req), c.maxTokens)
	if err != nil {
		return nil, err
	}
	return parseContent(raw)
}

// GenerateSimplified implements Generator.
func (c *Claude) GenerateSimplified(ctx context.Context, req Request) (*Content, error) {
	raw, err := c.complete(ctx, "", simplifiedPrompt(req), 1000)
	if err != nil {
		return nil, err
	}
	return parseRecipeOnly(raw)
}

func (c *Claude) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		message, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("claude api error: %w", err)
		}
		if len(message.Content) == 0 {
			return nil, fmt.Errorf("claude api returned empty response")
		}
		return message.Content[0].Text, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("text model circuit breaker open, request rejected",
				slog.String("state", c.circuitBreaker.State().String()))
			return "", fmt.Errorf("text model unavailable: circuit breaker open")
		}
		return "", err
	}

	slog.InfoContext(ctx, "generated content",
		slog.String("model", c.model),
		slog.Duration("duration", time.Since(start)))
	return cbResult.(string), nil
}
