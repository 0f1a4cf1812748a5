package textgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"morning-post/internal/resilience/circuitbreaker"
)

// defaultOpenAIModel is used when TEXTGEN_MODEL is not set.
const defaultOpenAIModel = openai.GPT4oMini

// OpenAI implements Generator using OpenAI chat completions in JSON mode.
// Calls go through a circuit breaker; retry and timeout policy live with
// the caller, which runs every generation under admission control.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	model          string
	maxTokens      int
	timeout        time.Duration
}

// NewOpenAI creates an OpenAI content generator.
func NewOpenAI(cfg *Config) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	slog.Info("Initialized OpenAI content generator",
		slog.String("model", model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &OpenAI{
		client:         openai.NewClient(cfg.APIKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.TextModelConfig()),
		model:          model,
		maxTokens:      cfg.MaxTokens,
		timeout:        cfg.Timeout,
	}
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, req Request) (*Content, error) {
	raw, err := o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req.RecipeType)},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
	}, o.maxTokens, 0.8)
	if err != nil {
		return nil, err
	}
	return parseContent(raw)
}

// GenerateSimplified implements Generator.
func (o *OpenAI) GenerateSimplified(ctx context.Context, req Request) (*Content, error) {
	raw, err := o.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: simplifiedPrompt(req)},
	}, 1000, 0.7)
	if err != nil {
		return nil, err
	}
	return parseRecipeOnly(raw)
}

func (o *OpenAI) complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()

	cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("openai api error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("openai api returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("text model circuit breaker open, request rejected",
				slog.String("state", o.circuitBreaker.State().String()))
			return "", fmt.Errorf("text model unavailable: circuit breaker open")
		}
		return "", err
	}

	slog.InfoContext(ctx, "generated content",
		slog.String("model", o.model),
		slog.Duration("duration", time.Since(start)))
	return cbResult.(string), nil
}
