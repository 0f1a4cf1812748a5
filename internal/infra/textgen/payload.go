package textgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"morning-post/internal/domain/entity"
)

// generatedPayload mirrors the JSON contract the prompts demand.
type generatedPayload struct {
	Greeting string `json:"greeting"`
	Holidays []struct {
		Name        string `json:"name"`
		Emoji       string `json:"emoji"`
		Description string `json:"description"`
	} `json:"holidays"`
	Recipe generatedRecipe `json:"recipe"`
}

type generatedRecipe struct {
	Name               string   `json:"name"`
	Servings           int      `json:"servings"`
	CookingTime        int      `json:"cooking_time"`
	CaloriesPerServing int      `json:"calories_per_serving"`
	Ingredients        []string `json:"ingredients"`
	Instructions       []string `json:"instructions"`
	Tip                string   `json:"tip"`
	ImagePromptEN      string   `json:"image_prompt_en"`
}

// parseContent decodes a model response and validates the required fields.
// Optional fields get defaults; a recipe missing its core fields is an error
// so the caller can fall back to the next tier.
func parseContent(raw string) (*Content, error) {
	var payload generatedPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return payload.toContent()
}

// parseRecipeOnly decodes the simplified response shape, which is a bare
// recipe object without greeting or holidays.
func parseRecipeOnly(raw string) (*Content, error) {
	var recipe generatedRecipe
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &recipe); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	r, err := recipe.toEntity()
	if err != nil {
		return nil, err
	}
	return &Content{Greeting: DefaultGreeting, Recipe: r}, nil
}

func (p *generatedPayload) toContent() (*Content, error) {
	recipe, err := p.Recipe.toEntity()
	if err != nil {
		return nil, err
	}

	content := &Content{
		Greeting: p.Greeting,
		Recipe:   recipe,
	}
	if content.Greeting == "" {
		content.Greeting = DefaultGreeting
	}

	for i, h := range p.Holidays {
		if i == 3 {
			break
		}
		if h.Name == "" {
			continue
		}
		emoji := h.Emoji
		if emoji == "" {
			emoji = "🎉"
		}
		content.Holidays = append(content.Holidays, entity.Holiday{
			Name:        h.Name,
			Description: h.Description,
			Emoji:       emoji,
		})
	}
	return content, nil
}

func (r *generatedRecipe) toEntity() (entity.Recipe, error) {
	if r.Name == "" {
		return entity.Recipe{}, fmt.Errorf("recipe missing name")
	}
	if len(r.Ingredients) == 0 {
		return entity.Recipe{}, fmt.Errorf("recipe missing ingredients")
	}
	if len(r.Instructions) == 0 {
		return entity.Recipe{}, fmt.Errorf("recipe missing instructions")
	}

	imagePrompt := r.ImagePromptEN
	if imagePrompt == "" {
		imagePrompt = "healthy " + r.Name
	}
	servings := r.Servings
	if servings <= 0 {
		servings = 1
	}

	return entity.Recipe{
		Name:               r.Name,
		Servings:           servings,
		CookTimeMinutes:    r.CookingTime,
		CaloriesPerServing: r.CaloriesPerServing,
		Ingredients:        r.Ingredients,
		Steps:              r.Instructions,
		Tip:                r.Tip,
		ImagePrompt:        imagePrompt,
	}, nil
}

// stripCodeFence removes a ```json fence if the model wrapped its output in
// one despite the JSON response format.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
