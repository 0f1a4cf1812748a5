package post

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks text into parts of at most target runes each, preferring
// paragraph boundaries, then sentence boundaries, then word boundaries,
// and cutting runes only as a last resort. Separators stay attached to the
// segment they follow, so concatenating the parts (markers stripped)
// reproduces the input byte for byte.
//
// When more than one part is produced, parts 2..n get a "\n\n(i/total)"
// marker appended. The marker is excluded from the length bound.
func Split(text string, target int) []string {
	if target < 1 {
		target = 1
	}
	if text == "" || utf8.RuneCountInString(text) <= target {
		return []string{text}
	}

	segments := splitSegments(text, target)
	parts := packSegments(segments, target)

	if len(parts) > 1 {
		for i := 1; i < len(parts); i++ {
			parts[i] += PartMarker(i+1, len(parts))
		}
	}
	return parts
}

// PartMarker returns the continuation marker appended to part i of total.
func PartMarker(i, total int) string {
	return fmt.Sprintf("\n\n(%d/%d)", i, total)
}

// StripMarker removes the continuation marker from part i of total, if
// present. Used when reconstructing the original text from parts.
func StripMarker(part string, i, total int) string {
	return strings.TrimSuffix(part, PartMarker(i, total))
}

// splitSegments cuts text into pieces that each fit the target, choosing
// the gentlest boundary available at every level.
func splitSegments(text string, target int) []string {
	var out []string
	for _, para := range strings.SplitAfter(text, "\n\n") {
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= target {
			out = append(out, para)
			continue
		}
		out = append(out, splitOversize(para, target)...)
	}
	return out
}

// splitOversize handles a single segment longer than the target: sentences
// first, then words, then raw rune chunks.
func splitOversize(seg string, target int) []string {
	var out []string
	for _, sentence := range splitSentences(seg) {
		if utf8.RuneCountInString(sentence) <= target {
			out = append(out, sentence)
			continue
		}
		for _, word := range strings.SplitAfter(sentence, " ") {
			if word == "" {
				continue
			}
			if utf8.RuneCountInString(word) <= target {
				out = append(out, word)
				continue
			}
			out = append(out, chunkRunes(word, target)...)
		}
	}
	return out
}

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace, and after newlines. The separator stays with the preceding
// sentence.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			out = append(out, string(runes[start:i+1]))
			start = i + 1
			continue
		}
		if (r == '.' || r == '!' || r == '?' || r == '…') &&
			i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = append(out, string(runes[start:i+2]))
			start = i + 2
			i++
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

// chunkRunes cuts s into raw chunks of at most target runes.
func chunkRunes(s string, target int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > target {
		out = append(out, string(runes[:target]))
		runes = runes[target:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// packSegments greedily joins segments into parts bounded by target runes.
// Every segment already fits the target on its own.
func packSegments(segments []string, target int) []string {
	var parts []string
	var current strings.Builder
	currentLen := 0

	for _, seg := range segments {
		segLen := utf8.RuneCountInString(seg)
		if currentLen > 0 && currentLen+segLen > target {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(seg)
		currentLen += segLen
	}
	if currentLen > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
