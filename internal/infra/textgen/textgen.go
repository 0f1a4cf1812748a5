// Package textgen generates the structured content of a daily post using a
// chat completion model. The model returns strict JSON with a greeting,
// holiday descriptions, and a recipe; implementations validate the payload
// and patch missing optional fields before returning it.
package textgen

import (
	"context"
	"time"

	"morning-post/internal/domain/entity"
)

// Request carries the inputs for one generation call.
type Request struct {
	// Date is the post date; prompts mention it in Russian.
	Date time.Time

	// Holidays are known holidays for the date. May be empty, in which
	// case the model invents plausible culinary observances.
	Holidays []entity.Holiday

	// RecipeType selects the dietary profile: "пп" or "кето".
	RecipeType string

	// Hint is an optional operator instruction appended to the prompt.
	Hint string
}

// Content is the structured model output.
type Content struct {
	Greeting string
	Holidays []entity.Holiday
	Recipe   entity.Recipe
}

// Generator produces post content for a date.
type Generator interface {
	// Generate builds full content from the complete prompt.
	Generate(ctx context.Context, req Request) (*Content, error)

	// GenerateSimplified builds a reduced recipe-only variant with a
	// shorter prompt. Used when full generation has already failed.
	GenerateSimplified(ctx context.Context, req Request) (*Content, error)
}

// Noop returns empty content without calling any model.
type Noop struct{}

func (Noop) Generate(_ context.Context, req Request) (*Content, error) {
	return StaticContent(req.Date), nil
}

func (Noop) GenerateSimplified(_ context.Context, req Request) (*Content, error) {
	return StaticContent(req.Date), nil
}
