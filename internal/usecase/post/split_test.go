package post

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble strips continuation markers and concatenates the parts back
// into a single string.
func reassemble(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		b.WriteString(StripMarker(p, i+1, len(parts)))
	}
	return b.String()
}

func TestSplit_FitsInOnePart(t *testing.T) {
	text := "Доброе утро!\n\nКороткий пост."
	parts := Split(text, 100)

	require.Len(t, parts, 1)
	assert.Equal(t, text, parts[0])
	assert.NotContains(t, parts[0], "(1/1)")
}

func TestSplit_RoundTrip(t *testing.T) {
	texts := map[string]string{
		"paragraphs": strings.Repeat("Первый абзац про сырники.\n\n", 20),
		"sentences":  strings.Repeat("Это предложение. А вот ещё одно! И третье? ", 15),
		"lines":      strings.Repeat("ингредиент номер раз\n", 40),
		"no breaks":  strings.Repeat("словослово ", 60),
		"solid":      strings.Repeat("б", 500),
		"emoji":      strings.Repeat("🍳 рецепт дня 🔥\n\n", 25),
		"mixed": "Доброе утро! ☀️\n\n" +
			strings.Repeat("Очень длинный абзац без перевода строки который придётся резать по предложениям. ", 10) +
			"\n\nПоследний абзац.",
	}

	for name, text := range texts {
		for _, target := range []int{50, 120, 400} {
			t.Run(fmt.Sprintf("%s/%d", name, target), func(t *testing.T) {
				parts := Split(text, target)
				require.NotEmpty(t, parts)

				if diff := cmp.Diff(text, reassemble(parts)); diff != "" {
					t.Errorf("reassembled text mismatch (-want +got):\n%s", diff)
				}
				total := len(parts)
				for i, p := range parts {
					stripped := StripMarker(p, i+1, total)
					assert.LessOrEqual(t, utf8.RuneCountInString(stripped), target,
						"part %d of %d exceeds target", i+1, total)
				}
			})
		}
	}
}

func TestSplit_LongPostInFourParts(t *testing.T) {
	// A 3000-rune post against an 850-rune target packs into four parts.
	para := strings.Repeat("р", 398) + "\n\n"
	text := strings.Repeat(para, 7) + strings.Repeat("р", 200)
	require.Equal(t, 3000, utf8.RuneCountInString(text))

	parts := Split(text, 850)
	require.Len(t, parts, 4)

	assert.Equal(t, text, reassemble(parts))
	assert.NotContains(t, parts[0], "(1/4)")
	assert.True(t, strings.HasSuffix(parts[1], "\n\n(2/4)"))
	assert.True(t, strings.HasSuffix(parts[3], "\n\n(4/4)"))
}

func TestSplit_PrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("а", 298) + "\n\n"
	text := para + para + strings.Repeat("а", 300)

	parts := Split(text, 650)
	require.Len(t, parts, 2)

	// The cut lands between paragraphs, keeping the separator attached
	// to the first part.
	assert.True(t, strings.HasSuffix(parts[0], "\n\n"))
	assert.False(t, strings.HasPrefix(parts[1], "\n"))
}

func TestSplit_FallsBackToSentences(t *testing.T) {
	sentence := "Это одно законченное предложение про завтрак. "
	text := strings.Repeat(sentence, 10)

	parts := Split(text, 100)
	require.Greater(t, len(parts), 1)

	stripped := StripMarker(parts[0], 1, len(parts))
	assert.True(t, strings.HasSuffix(stripped, ". "), "expected a sentence boundary, got %q", stripped)
	assert.Equal(t, text, reassemble(parts))
}

func TestSplit_HardCutWithoutWhitespace(t *testing.T) {
	text := strings.Repeat("ы", 250)
	parts := Split(text, 100)

	require.Len(t, parts, 3)
	assert.Equal(t, text, reassemble(parts))
	for i, p := range parts {
		stripped := StripMarker(p, i+1, 3)
		assert.LessOrEqual(t, utf8.RuneCountInString(stripped), 100, "part %d", i+1)
	}
}

func TestSplit_TinyTarget(t *testing.T) {
	parts := Split("абв", 0)
	assert.Equal(t, "абв", reassemble(parts))
	for i, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(StripMarker(p, i+1, len(parts))), 1, "part %d", i+1)
	}
}

func TestPartMarker(t *testing.T) {
	assert.Equal(t, "\n\n(2/4)", PartMarker(2, 4))
	assert.Equal(t, "часть", StripMarker("часть\n\n(3/5)", 3, 5))
	// A part without the marker passes through unchanged.
	assert.Equal(t, "часть", StripMarker("часть", 1, 2))
}
