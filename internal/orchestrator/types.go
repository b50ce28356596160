package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/session"
)

// State is the position of the conversation in its turn cycle
type State int

const (
	StateIdle State = iota
	StateTopicChosen
	StateAwaitingInput
	StateCapturing
	StateProcessing
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTopicChosen:
		return "topic_chosen"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateCapturing:
		return "capturing"
	case StateProcessing:
		return "processing"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyTopic      = errors.New("topic must not be empty")
	ErrEmptyInput      = errors.New("input must not be empty")
	ErrNoAudio         = errors.New("no audio was captured")
	ErrEmptyTranscript = errors.New("nothing was heard in the recording")
	ErrEnded           = errors.New("conversation has ended")
	ErrNoRecorder      = errors.New("speech input is not available")
)

// TransitionError reports an operation that is not valid in the current state
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

// Model generates replies and transcribes speech
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Transcribe(ctx context.Context, buf *audio.Buffer) (string, error)
}

// Conversation is the session history the orchestrator records into
type Conversation interface {
	Start(ctx context.Context, topic string) (string, error)
	Append(ctx context.Context, userInput, aiResponse string) (session.Turn, error)
	BuildTurnPrompt(userInput string) string
	ID() string
	Clear()
}

// Recorder captures one utterance between Start and Stop
type Recorder interface {
	Start(ctx context.Context) error
	Stop() *audio.Buffer
}

// Renderer converts reply text to audio
type Renderer interface {
	Render(ctx context.Context, text string) (*audio.Buffer, error)
}

// Player plays rendered audio to completion
type Player interface {
	Play(ctx context.Context, buf *audio.Buffer) error
}

// Display shows conversation text to the user
type Display interface {
	ShowReply(text string)
	ShowTranscript(text string)
}

// Deps are the collaborators of an Orchestrator. Recorder, Renderer and
// Player may be nil for a text-only conversation.
type Deps struct {
	Model    Model
	Store    Conversation
	Recorder Recorder
	Renderer Renderer
	Player   Player
	Display  Display
}
