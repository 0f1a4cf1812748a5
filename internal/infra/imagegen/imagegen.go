// Package imagegen renders a food photograph for the day's recipe.
// Implementations return (nil, nil) when image generation is intentionally
// skipped; a post without an image is a normal outcome, not a failure.
package imagegen

import "context"

// Generator turns an English dish description into image bytes.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Disabled skips image generation entirely.
type Disabled struct{}

// Generate implements Generator.
func (Disabled) Generate(context.Context, string) ([]byte, error) {
	return nil, nil
}

// EnhancePrompt wraps a bare dish description in the food-photography
// styling shared by every backend.
func EnhancePrompt(prompt string) string {
	return "Professional food photography of " + prompt + ", " +
		"healthy meal, appetizing presentation, natural lighting, " +
		"on a beautiful white ceramic plate, rustic wooden table background, " +
		"garnished elegantly, high resolution, food blog style, " +
		"warm and inviting atmosphere, no text or watermarks"
}
