package post

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"morning-post/internal/domain/entity"
)

func sampleArtifact() *entity.Artifact {
	return &entity.Artifact{
		Greeting: "Доброе утро, мои дорогие! ☀️",
		Holidays: []entity.Holiday{
			{Name: "Международный день кофе", Description: "Праздник бодрости", Emoji: "☕"},
			{Name: "День каши", Emoji: ""},
		},
		Recipe: entity.Recipe{
			Name:               "Сырники без сахара",
			Servings:           2,
			CookTimeMinutes:    20,
			CaloriesPerServing: 180,
			Ingredients:        []string{"творог 400 г", "яйцо 1 шт"},
			Steps:              []string{"Смешать ингредиенты", "Обжарить до золотистой корочки"},
			Tip:                "Подавайте с ягодами",
		},
		GeneratedAt: time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestRender_FullLayout(t *testing.T) {
	got := Render(sampleArtifact(), Template{Kind: KindMedium})

	assert.Contains(t, got, "Доброе утро, мои дорогие! ☀️")
	assert.Contains(t, got, "📅 Сегодня <b>1 октября</b>, среда")
	assert.Contains(t, got, "🎉 <b>Праздники сегодня:</b>")
	assert.Contains(t, got, "• ☕ <b>Международный день кофе</b> — Праздник бодрости")
	// Missing emoji falls back to the default.
	assert.Contains(t, got, "• 🎉 <b>День каши</b>")
	assert.Contains(t, got, "📖 <b>Рецепт: Сырники без сахара</b>")
	assert.Contains(t, got, "🍽 Порции: 2 | ⏱ Время: 20 мин | 🔥 180 ккал")
	assert.Contains(t, got, "<b>Ингредиенты:</b>\n• творог 400 г\n• яйцо 1 шт")
	assert.Contains(t, got, "<b>Приготовление:</b>\n1. Смешать ингредиенты\n2. Обжарить до золотистой корочки")
	assert.Contains(t, got, "💡 <b>Совет:</b> Подавайте с ягодами")
}

func TestRender_ShortLayout(t *testing.T) {
	got := Render(sampleArtifact(), Template{Kind: KindShort})

	assert.Contains(t, got, "📅 <b>1 октября</b>, среда")
	assert.Contains(t, got, "🍳 <b>Сырники без сахара</b>")
	assert.Contains(t, got, "⏱ 20 мин | 🍽 2 порций")
	assert.Contains(t, got, "🔥 180 ккал/порция")
	// The compact layout omits the ingredient list.
	assert.NotContains(t, got, "Ингредиенты")
}

func TestRender_Idempotent(t *testing.T) {
	a := sampleArtifact()
	tpl := Template{Kind: KindMedium, Budget: 500}

	first := Render(a, tpl)
	second := Render(a, tpl)
	assert.Equal(t, first, second)
}

func TestRender_AppendsSignature(t *testing.T) {
	sig := "\n\n🍽 Utro | ПП рецепты"
	got := Render(sampleArtifact(), Template{Kind: KindMedium, Signature: sig})
	assert.True(t, strings.HasSuffix(got, sig))
}

func TestRender_TruncatesToBudget(t *testing.T) {
	a := sampleArtifact()

	for _, budget := range []int{100, 200, 400} {
		got := Render(a, Template{Kind: KindMedium, Budget: budget})
		assert.LessOrEqual(t, utf8.RuneCountInString(got), budget, "budget %d", budget)
	}
}

func TestRender_LongKindNeverTruncates(t *testing.T) {
	a := sampleArtifact()
	full := Render(a, Template{Kind: KindLong})
	tiny := Render(a, Template{Kind: KindLong, Budget: 50})
	assert.Equal(t, full, tiny)
}

func TestRender_OmitsEmptyBlocks(t *testing.T) {
	a := sampleArtifact()
	a.Holidays = nil
	a.Recipe.Tip = ""
	a.Recipe.CaloriesPerServing = 0

	got := Render(a, Template{Kind: KindMedium})
	assert.NotContains(t, got, "Праздники")
	assert.NotContains(t, got, "Совет")
	assert.NotContains(t, got, "ккал")
	assert.NotContains(t, got, "\n\n\n")
}

func TestRender_HolidayCap(t *testing.T) {
	a := sampleArtifact()
	a.Holidays = []entity.Holiday{
		{Name: "Первый"}, {Name: "Второй"}, {Name: "Третий"}, {Name: "Четвёртый"},
	}

	got := Render(a, Template{Kind: KindMedium})
	assert.Contains(t, got, "Третий")
	assert.NotContains(t, got, "Четвёртый")
}

func TestTruncateAtSentence(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		want   string
	}{
		{"fits untouched", "Привет. Как дела?", 100, "Привет. Как дела?"},
		{"cuts at sentence end", "Первое предложение. Второе предложение растянулось далеко.", 30, "Первое предложение."},
		{"cuts at word boundary", "Однопредложение без знаков препинания вообще нигде", 25, "Однопредложение без…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateAtSentence(tt.text, tt.budget)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.budget)
		})
	}
}

func TestCapRunes(t *testing.T) {
	assert.Equal(t, "абв", capRunes("абв", 5))
	got := capRunes("абвгде", 4)
	assert.Equal(t, 4, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}
