package tts

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/lexiqai/voice-companion/internal/audio"
)

// Output describes the audio a synthesizer produces
type Output struct {
	Encoding   audio.Encoding
	SampleRate int // Zero for self-describing encodings such as mp3
	Channels   int
}

// Synthesizer converts one marked-up chunk of text to audio bytes.
// Byte slices from successive calls must be concatenable.
type Synthesizer interface {
	Synthesize(ctx context.Context, markup string) ([]byte, error)
	Output() Output
}

// Marker is implemented by synthesizers that need a markup other than SSML
type Marker interface {
	Markup(chunk string) string
}

// SSML wraps a chunk in a <speak> envelope, escaping XML metacharacters
func SSML(chunk string) string {
	return "<speak>" + html.EscapeString(strings.TrimSpace(chunk)) + "</speak>"
}

// SynthesisError reports the chunk whose synthesis failed
type SynthesisError struct {
	Op    string // "synthesize"
	Chunk int    // Zero-based chunk index
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech %s failed on chunk %d: %v", e.Op, e.Chunk, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
