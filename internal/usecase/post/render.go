// Package post turns artifacts into channel-ready text and manages the
// pending-post lifecycle: rendering, splitting, storage, and publishing.
package post

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"morning-post/internal/domain/entity"
	"morning-post/internal/infra/textgen"
	"morning-post/internal/infra/transport"
)

// Template kinds, mirroring the operator settings vocabulary.
const (
	KindShort  = "short"
	KindMedium = "medium"
	KindLong   = "long"
	KindCustom = "custom"
)

// renderedHolidayCap limits how many holidays appear in a post.
const renderedHolidayCap = 3

// Template describes how an artifact is rendered.
type Template struct {
	// Kind selects the layout and truncation behavior.
	Kind string

	// Budget is the character budget in runes. Zero picks the default
	// for the kind: the caption limit for short, the message limit
	// otherwise. The long kind is exempt from truncation; oversize text
	// is handled by Split.
	Budget int

	// Signature is appended verbatim after the body, before truncation.
	Signature string
}

// budget resolves the effective character budget.
func (t Template) budget() int {
	if t.Budget > 0 {
		return t.Budget
	}
	if t.Kind == KindShort {
		return transport.CaptionLimit
	}
	return transport.MessageLimit
}

// Render formats an artifact into HTML post text. It is a pure function:
// the same artifact and template always produce the same string.
func Render(a *entity.Artifact, tpl Template) string {
	var text string
	if tpl.Kind == KindShort {
		text = renderShort(a)
	} else {
		text = renderFull(a)
	}

	text += tpl.Signature

	if tpl.Kind != KindLong {
		text = truncateAtSentence(text, tpl.budget())
	}
	return text
}

func renderShort(a *entity.Artifact) string {
	dateStr := textgen.FormatDateRussian(a.GeneratedAt)
	weekday := textgen.WeekdayRussian(a.GeneratedAt)

	blocks := []string{
		a.Greeting,
		fmt.Sprintf("📅 <b>%s</b>, %s", dateStr, weekday),
	}
	if h := holidayBlock(a.Holidays); h != "" {
		blocks = append(blocks, h)
	}

	recipe := fmt.Sprintf("🍳 <b>%s</b>\n⏱ %d мин | 🍽 %d порций", a.Recipe.Name, a.Recipe.CookTimeMinutes, a.Recipe.Servings)
	if a.Recipe.CaloriesPerServing > 0 {
		recipe += fmt.Sprintf("\n🔥 %d ккал/порция", a.Recipe.CaloriesPerServing)
	}
	blocks = append(blocks, recipe)

	return strings.Join(blocks, "\n\n")
}

func renderFull(a *entity.Artifact) string {
	dateStr := textgen.FormatDateRussian(a.GeneratedAt)
	weekday := textgen.WeekdayRussian(a.GeneratedAt)

	blocks := []string{
		a.Greeting,
		fmt.Sprintf("📅 Сегодня <b>%s</b>, %s", dateStr, weekday),
	}
	if h := holidayBlock(a.Holidays); h != "" {
		blocks = append(blocks, h)
	}

	meta := fmt.Sprintf("🍽 Порции: %d | ⏱ Время: %d мин", a.Recipe.Servings, a.Recipe.CookTimeMinutes)
	if a.Recipe.CaloriesPerServing > 0 {
		meta += fmt.Sprintf(" | 🔥 %d ккал", a.Recipe.CaloriesPerServing)
	}
	blocks = append(blocks,
		fmt.Sprintf("📖 <b>Рецепт: %s</b>", a.Recipe.Name),
		meta,
	)

	if len(a.Recipe.Ingredients) > 0 {
		lines := make([]string, 0, len(a.Recipe.Ingredients)+1)
		lines = append(lines, "<b>Ингредиенты:</b>")
		for _, ing := range a.Recipe.Ingredients {
			lines = append(lines, "• "+ing)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if len(a.Recipe.Steps) > 0 {
		lines := make([]string, 0, len(a.Recipe.Steps)+1)
		lines = append(lines, "<b>Приготовление:</b>")
		for i, step := range a.Recipe.Steps {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if a.Recipe.Tip != "" {
		blocks = append(blocks, "💡 <b>Совет:</b> "+a.Recipe.Tip)
	}

	return strings.Join(blocks, "\n\n")
}

// holidayBlock formats up to renderedHolidayCap holidays as a bullet list.
func holidayBlock(holidays []entity.Holiday) string {
	if len(holidays) == 0 {
		return ""
	}
	if len(holidays) > renderedHolidayCap {
		holidays = holidays[:renderedHolidayCap]
	}

	lines := make([]string, 0, len(holidays)+1)
	lines = append(lines, "🎉 <b>Праздники сегодня:</b>")
	for _, h := range holidays {
		emoji := h.Emoji
		if emoji == "" {
			emoji = "🎉"
		}
		line := fmt.Sprintf("• %s <b>%s</b>", emoji, h.Name)
		if h.Description != "" {
			line += " — " + h.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// truncateAtSentence cuts text to at most budget runes, preferring the last
// sentence boundary and falling back to the last word boundary. A cut is
// marked with an ellipsis that fits within the budget.
func truncateAtSentence(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	if budget <= 1 {
		return string(runes[:budget])
	}

	// Reserve one rune for the ellipsis.
	window := runes[:budget-1]

	if cut := lastSentenceEnd(window); cut > 0 {
		return string(window[:cut])
	}
	if cut := lastWordEnd(window); cut > 0 {
		return string(window[:cut]) + "…"
	}
	return string(window) + "…"
}

// lastSentenceEnd returns the index just past the last sentence-ending
// punctuation in runes, or 0 when none is found.
func lastSentenceEnd(runes []rune) int {
	for i := len(runes) - 1; i > 0; i-- {
		switch runes[i] {
		case '.', '!', '?', '…':
			return i + 1
		}
	}
	return 0
}

// lastWordEnd returns the index of the last whitespace boundary, so a cut
// never lands mid-word.
func lastWordEnd(runes []rune) int {
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return 0
}

// capRunes truncates s to at most limit runes, marking a cut with an
// ellipsis. Used for photo captions.
func capRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
