package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexiqai/voice-companion/internal/audio"
)

// ErrEmptyResponse is returned when the model answers with no usable text
var ErrEmptyResponse = errors.New("language model returned an empty response")

// ModelError reports a failed generate, transcribe or summarize call
type ModelError struct {
	Op  string // "generate", "transcribe", "summarize"
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("language model %s failed: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Exchange is one user/assistant pair handed to the summarizer
type Exchange struct {
	UserInput  string
	AIResponse string
}

// LanguageModel is everything the conversation needs from hosted models
type LanguageModel interface {
	// Generate returns the reply to a fully built prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Transcribe converts recorded speech to text
	Transcribe(ctx context.Context, buf *audio.Buffer) (string, error)

	// Summarize returns the key topics and emotional tone of the exchanges
	Summarize(ctx context.Context, exchanges []Exchange) ([]string, error)
}

// Completer sends a single prompt to a chat model
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
