// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Artifact
// and PendingPost, along with their validation rules and domain-specific errors.
package entity

import "time"

// Holiday represents a single food-holiday fact for a date.
type Holiday struct {
	Name        string
	Description string
	Emoji       string
}

// Recipe is the structured recipe produced by the text model.
type Recipe struct {
	Name               string
	Servings           int
	CookTimeMinutes    int
	CaloriesPerServing int // 0 when the model did not provide a value
	Ingredients        []string
	Steps              []string
	Tip                string
	ImagePrompt        string // English prompt for the image model
}

// Artifact is one immutable generated content bundle for a date.
// Each regeneration produces a brand-new Artifact; nothing mutates one
// after it leaves the assembler.
type Artifact struct {
	Greeting     string
	Holidays     []Holiday
	Recipe       Recipe
	RenderedText string
	ImageBytes   []byte // nil when image generation was skipped or disabled

	// Degraded marks an artifact produced by the static template fallback
	// after model generation failed, rather than by the primary model.
	Degraded bool

	GeneratedAt time.Time
}

// HasImage reports whether the artifact carries image bytes.
func (a *Artifact) HasImage() bool {
	return len(a.ImageBytes) > 0
}

// Clone returns a deep copy of the artifact. Callers that hand artifacts
// across ownership boundaries use this to preserve immutability.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Holidays = append([]Holiday(nil), a.Holidays...)
	cp.Recipe.Ingredients = append([]string(nil), a.Recipe.Ingredients...)
	cp.Recipe.Steps = append([]string(nil), a.Recipe.Steps...)
	cp.ImageBytes = append([]byte(nil), a.ImageBytes...)
	return &cp
}

// Validate checks that the artifact has the minimum content required for
// rendering and delivery.
func (a *Artifact) Validate() error {
	if a.Greeting == "" {
		return &ValidationError{Field: "Greeting", Message: "must not be empty"}
	}
	if a.Recipe.Name == "" {
		return &ValidationError{Field: "Recipe.Name", Message: "must not be empty"}
	}
	if len(a.Recipe.Steps) == 0 {
		return &ValidationError{Field: "Recipe.Steps", Message: "must contain at least one step"}
	}
	return nil
}
