package tts

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// A sentence is any run of text up to and including a run of terminators
var sentencePattern = regexp.MustCompile(`[^.!?]*[.!?]+`)

// SplitSentences splits text after each run of '.', '!' or '?'.
// A trailing unterminated fragment is returned as the last sentence, so
// joining the result reproduces text exactly.
func SplitSentences(text string) []string {
	var sentences []string
	end := 0
	for _, m := range sentencePattern.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[m[0]:m[1]])
		end = m[1]
	}
	if end < len(text) {
		sentences = append(sentences, text[end:])
	}
	return sentences
}

// Chunk packs whole sentences into chunks of at most maxRunes runes.
// A sentence longer than maxRunes becomes a chunk of its own.
func Chunk(text string, maxRunes int) []string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	for _, sentence := range SplitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		if currentLen > 0 && currentLen+n > maxRunes {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(sentence)
		currentLen += n
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
