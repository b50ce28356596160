package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/observability"
	"github.com/lexiqai/voice-companion/internal/stt"
)

// Moderator implements LanguageModel by combining a chat completer with a transcriber
type Moderator struct {
	completer   Completer
	transcriber stt.Transcriber
	persona     string
	logger      zerolog.Logger
}

// NewModerator creates the conversation model. persona labels assistant lines in summaries.
func NewModerator(completer Completer, transcriber stt.Transcriber, persona string, logger zerolog.Logger) *Moderator {
	if persona == "" {
		persona = "ADAM"
	}
	return &Moderator{
		completer:   completer,
		transcriber: transcriber,
		persona:     persona,
		logger:      logger.With().Str("component", "moderator").Logger(),
	}
}

// Generate returns the model's reply to prompt
func (m *Moderator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	reply, err := m.completer.Complete(ctx, prompt)
	observability.ObserveModel("generate", start, err == nil)
	if err != nil {
		observability.RecordError("model", "generate")
		return "", &ModelError{Op: "generate", Err: err}
	}
	return reply, nil
}

// Transcribe returns the text of a recorded utterance. A silent recording yields "".
func (m *Moderator) Transcribe(ctx context.Context, buf *audio.Buffer) (string, error) {
	if m.transcriber == nil {
		return "", &ModelError{Op: "transcribe", Err: fmt.Errorf("no transcriber configured")}
	}

	start := time.Now()
	result, err := m.transcriber.Transcribe(ctx, buf)
	observability.ObserveModel("transcribe", start, err == nil)
	if err != nil {
		observability.RecordError("model", "transcribe")
		return "", &ModelError{Op: "transcribe", Err: err}
	}

	m.logger.Debug().
		Str("provider", m.transcriber.Name()).
		Int("chars", len(result.Text)).
		Msg("Utterance transcribed")
	return result.Text, nil
}

// Summarize asks for topics and tone of each exchange and returns the sorted union.
// The caller's slice is never modified.
func (m *Moderator) Summarize(ctx context.Context, exchanges []Exchange) ([]string, error) {
	if len(exchanges) == 0 {
		return nil, nil
	}

	start := time.Now()
	seen := make(map[string]struct{})
	for _, exchange := range exchanges {
		analysis, err := m.completer.Complete(ctx, m.summaryPrompt(exchange))
		if err != nil {
			observability.ObserveModel("summarize", start, false)
			observability.RecordError("model", "summarize")
			return nil, &ModelError{Op: "summarize", Err: err}
		}
		for _, tag := range SplitTags(analysis) {
			seen[tag] = struct{}{}
		}
	}
	observability.ObserveModel("summarize", start, true)

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

func (m *Moderator) summaryPrompt(exchange Exchange) string {
	return fmt.Sprintf(
		"Analyze this conversation exchange and return only key topics and emotional tone: User: %s %s: %s",
		exchange.UserInput, m.persona, exchange.AIResponse,
	)
}

// SplitTags turns a comma or newline separated analysis into distinct tags
func SplitTags(analysis string) []string {
	fields := strings.FieldsFunc(analysis, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	var tags []string
	seen := make(map[string]struct{})
	for _, field := range fields {
		tag := strings.Trim(strings.TrimSpace(field), ".;-* ")
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
