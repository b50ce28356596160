package tts

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/observability"
)

// DefaultMaxChunk is the longest text sent in one synthesis request
const DefaultMaxChunk = 1500

// Renderer turns reply text into one playable audio buffer
type Renderer struct {
	synth    Synthesizer
	maxChunk int
	logger   zerolog.Logger
}

// NewRenderer creates a renderer; a non-positive maxChunk uses DefaultMaxChunk
func NewRenderer(synth Synthesizer, maxChunk int, logger zerolog.Logger) *Renderer {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunk
	}
	return &Renderer{
		synth:    synth,
		maxChunk: maxChunk,
		logger:   logger.With().Str("component", "tts").Logger(),
	}
}

// Render sanitizes, chunks and synthesizes text. It returns nil when there is
// nothing to say. If any chunk fails no partial audio is returned.
func (r *Renderer) Render(ctx context.Context, text string) (*audio.Buffer, error) {
	start := time.Now()
	cleaned := Sanitize(text)
	if cleaned == "" {
		return nil, nil
	}

	markup := SSML
	if m, ok := r.synth.(Marker); ok {
		markup = m.Markup
	}

	chunks := Chunk(cleaned, r.maxChunk)
	var data []byte
	sent := 0
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		sent++
		out, err := r.synth.Synthesize(ctx, markup(chunk))
		if err != nil {
			observability.ObserveTTS(start, sent, false)
			observability.RecordError("synthesis", "tts")
			r.logger.Warn().Err(err).Int("chunk", i).Int("chunks", len(chunks)).Msg("Synthesis failed")
			return nil, &SynthesisError{Op: "synthesize", Chunk: i, Err: err}
		}
		data = append(data, out...)
	}
	observability.ObserveTTS(start, sent, true)

	if len(data) == 0 {
		return nil, nil
	}

	r.logger.Debug().
		Int("chunks", sent).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Reply rendered")

	format := r.synth.Output()
	return &audio.Buffer{
		Data:       data,
		Encoding:   format.Encoding,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	}, nil
}
