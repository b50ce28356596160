package tts

import (
	"regexp"
	"strings"
)

var (
	labelPattern        = regexp.MustCompile(`[A-Z]+:`)
	leadingLabelPattern = regexp.MustCompile(`^[A-Z]+:\s*`)
	astralPattern       = regexp.MustCompile(`[\x{10000}-\x{10FFFF}]`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
	unspeakablePattern  = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s.,!?"'()\-]`)
)

// Sanitize strips speaker labels, emoji and symbols a voice should not read aloud
func Sanitize(text string) string {
	cleaned := collapseRepeatedLabels(text)
	cleaned = leadingLabelPattern.ReplaceAllString(cleaned, "")
	cleaned = astralPattern.ReplaceAllString(cleaned, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = unspeakablePattern.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// collapseRepeatedLabels turns "ADAM: ADAM: hi" into "ADAM: hi".
// A label repeats when only whitespace separates it from the previous one.
func collapseRepeatedLabels(text string) string {
	matches := labelPattern.FindAllStringIndex(text, -1)
	if len(matches) < 2 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0     // End of text already copied
	prevEnd := -1 // End of the previous label
	prevLabel := ""
	for _, m := range matches {
		label := text[m[0]:m[1]]
		between := ""
		if prevEnd >= 0 {
			between = text[prevEnd:m[0]]
		}
		if prevEnd >= 0 && strings.TrimSpace(between) == "" && strings.HasSuffix(prevLabel, label) {
			b.WriteString(text[last:prevEnd])
			last = m[1]
			prevEnd = m[1]
			continue
		}
		prevEnd = m[1]
		prevLabel = label
	}
	b.WriteString(text[last:])
	return b.String()
}
