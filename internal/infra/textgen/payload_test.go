package textgen

import (
	"strings"
	"testing"
	"time"

	"morning-post/internal/domain/entity"
)

const validResponse = `{
	"greeting": "Чудесного утра, друзья! 🌞",
	"holidays": [
		{"name": "Международный день кофе", "emoji": "☕", "description": "Праздник любимого напитка"},
		{"name": "День овсянки", "emoji": "🥣", "description": "Повод начать день полезно"}
	],
	"recipe": {
		"name": "Сырники без сахара",
		"servings": 2,
		"cooking_time": 25,
		"calories_per_serving": 210,
		"ingredients": ["200г творога 5%", "1 яйцо", "30г рисовой муки", "15г эритрита"],
		"instructions": ["Смешайте творог с яйцом", "Добавьте муку и эритрит", "Сформируйте сырники", "Обжарьте по 3 минуты с каждой стороны"],
		"tip": "Не берите обезжиренный творог, сырники развалятся",
		"image_prompt_en": "golden syrniki cottage cheese pancakes on a white plate"
	}
}`

func TestParseContent(t *testing.T) {
	got, err := parseContent(validResponse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Greeting != "Чудесного утра, друзья! 🌞" {
		t.Errorf("unexpected greeting: %q", got.Greeting)
	}
	if len(got.Holidays) != 2 {
		t.Fatalf("expected 2 holidays, got %d", len(got.Holidays))
	}
	if got.Holidays[0].Emoji != "☕" {
		t.Errorf("unexpected emoji: %q", got.Holidays[0].Emoji)
	}
	if got.Recipe.Name != "Сырники без сахара" {
		t.Errorf("unexpected recipe name: %q", got.Recipe.Name)
	}
	if got.Recipe.CookTimeMinutes != 25 || got.Recipe.CaloriesPerServing != 210 {
		t.Errorf("unexpected recipe numbers: %+v", got.Recipe)
	}
	if len(got.Recipe.Steps) != 4 {
		t.Errorf("expected 4 steps, got %d", len(got.Recipe.Steps))
	}
}

func TestParseContent_Defaults(t *testing.T) {
	raw := `{
		"holidays": [{"name": "День чая"}],
		"recipe": {
			"name": "Чайный кекс",
			"ingredients": ["мука"],
			"instructions": ["испечь"]
		}
	}`

	got, err := parseContent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Greeting != DefaultGreeting {
		t.Errorf("expected default greeting, got %q", got.Greeting)
	}
	if got.Holidays[0].Emoji != "🎉" {
		t.Errorf("expected default emoji, got %q", got.Holidays[0].Emoji)
	}
	if got.Recipe.ImagePrompt != "healthy Чайный кекс" {
		t.Errorf("expected derived image prompt, got %q", got.Recipe.ImagePrompt)
	}
	if got.Recipe.Servings != 1 {
		t.Errorf("expected servings default 1, got %d", got.Recipe.Servings)
	}
}

func TestParseContent_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "not json",
			raw:  "Вот ваш рецепт: блины",
		},
		{
			name: "recipe missing name",
			raw:  `{"recipe": {"ingredients": ["x"], "instructions": ["y"]}}`,
		},
		{
			name: "recipe missing ingredients",
			raw:  `{"recipe": {"name": "Блины", "instructions": ["y"]}}`,
		},
		{
			name: "recipe missing instructions",
			raw:  `{"recipe": {"name": "Блины", "ingredients": ["x"]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseContent(tt.raw); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseContent_LimitsHolidaysToThree(t *testing.T) {
	raw := `{
		"holidays": [
			{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}
		],
		"recipe": {"name": "X", "ingredients": ["a"], "instructions": ["b"]}
	}`

	got, err := parseContent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Holidays) != 3 {
		t.Errorf("expected 3 holidays, got %d", len(got.Holidays))
	}
}

func TestParseRecipeOnly(t *testing.T) {
	raw := "```json\n" + `{
		"name": "Гречневая каша",
		"servings": 4,
		"cooking_time": 20,
		"ingredients": ["гречка", "вода"],
		"instructions": ["варить"],
		"tip": "совет",
		"image_prompt_en": "buckwheat porridge"
	}` + "\n```"

	got, err := parseRecipeOnly(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Greeting != DefaultGreeting {
		t.Errorf("expected default greeting, got %q", got.Greeting)
	}
	if got.Recipe.Name != "Гречневая каша" {
		t.Errorf("unexpected recipe name: %q", got.Recipe.Name)
	}
	if len(got.Holidays) != 0 {
		t.Errorf("expected no holidays, got %d", len(got.Holidays))
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json untouched",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "plain fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticContent_Validates(t *testing.T) {
	content := StaticContent(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))

	artifact := &entity.Artifact{
		Greeting:    content.Greeting,
		Holidays:    content.Holidays,
		Recipe:      content.Recipe,
		Degraded:    true,
		GeneratedAt: time.Now(),
	}
	if err := artifact.Validate(); err != nil {
		t.Errorf("static content must always validate, got %v", err)
	}
	if !strings.Contains(content.Holidays[0].Name, "1 октября") {
		t.Errorf("expected date in holiday name, got %q", content.Holidays[0].Name)
	}
}
