package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/observability"
	"github.com/lexiqai/voice-companion/internal/session"
)

// Orchestrator drives one user through topics and turns.
// Calls are sequential; each blocks until its turn is fully handled.
type Orchestrator struct {
	deps   Deps
	logger zerolog.Logger

	mu            sync.Mutex
	state         State
	sessionLogger zerolog.Logger
}

// New creates an orchestrator in the Idle state
func New(deps Deps, logger zerolog.Logger) *Orchestrator {
	logger = logger.With().Str("component", "orchestrator").Logger()
	return &Orchestrator{
		deps:          deps,
		logger:        logger,
		state:         StateIdle,
		sessionLogger: logger,
	}
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SpeechInput reports whether StartCapture can be used
func (o *Orchestrator) SpeechInput() bool {
	return o.deps.Recorder != nil
}

func (o *Orchestrator) setState(state State) {
	if o.state != state {
		o.sessionLogger.Debug().Str("from", o.state.String()).Str("to", state.String()).Msg("State transition")
	}
	o.state = state
}

// ChooseTopic starts a new session for topic and presents the opening reply.
// From AwaitingInput it replaces the current session; if that fails the
// current session stays in use.
func (o *Orchestrator) ChooseTopic(ctx context.Context, topic string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateEnded {
		return "", ErrEnded
	}
	if o.state != StateIdle && o.state != StateAwaitingInput {
		return "", &TransitionError{Op: "choose a topic", State: o.state}
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyTopic
	}

	prev := o.state
	o.setState(StateTopicChosen)
	reply, err := o.deps.Store.Start(ctx, topic)
	if err != nil {
		observability.RecordError("session_start", "orchestrator")
		o.sessionLogger.Error().Err(err).Str("topic", topic).Msg("Failed to start session")
		if prev == StateAwaitingInput && o.deps.Store.ID() != "" {
			o.setState(StateAwaitingInput)
			return "", err
		}
		o.sessionLogger = o.logger
		o.setState(StateIdle)
		return "", err
	}

	o.sessionLogger = observability.WithSession(o.logger, o.deps.Store.ID())
	o.present(ctx, o.sessionLogger, reply)
	o.setState(StateAwaitingInput)
	return reply, nil
}

// NewTopic abandons the current session and starts another
func (o *Orchestrator) NewTopic(ctx context.Context, topic string) (string, error) {
	return o.ChooseTopic(ctx, topic)
}

// StartCapture begins recording the user's utterance
func (o *Orchestrator) StartCapture(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.require("start recording", StateAwaitingInput); err != nil {
		return err
	}
	if o.deps.Recorder == nil {
		return ErrNoRecorder
	}
	if err := o.deps.Recorder.Start(ctx); err != nil {
		o.sessionLogger.Warn().Err(err).Msg("Could not start recording")
		return err
	}
	o.setState(StateCapturing)
	return nil
}

// StopCapture ends recording, transcribes the utterance and answers it
func (o *Orchestrator) StopCapture(ctx context.Context) (*session.Turn, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.require("stop recording", StateCapturing); err != nil {
		return nil, err
	}

	buf := o.deps.Recorder.Stop()
	if buf.IsEmpty() {
		o.setState(StateAwaitingInput)
		return nil, ErrNoAudio
	}

	o.setState(StateProcessing)
	start := time.Now()
	text, err := o.deps.Model.Transcribe(ctx, buf)
	if err != nil {
		o.sessionLogger.Error().Err(err).Msg("Transcription failed")
		o.setState(StateAwaitingInput)
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		o.setState(StateAwaitingInput)
		return nil, ErrEmptyTranscript
	}
	if o.deps.Display != nil {
		o.deps.Display.ShowTranscript(text)
	}
	return o.process(ctx, text, "speak", start)
}

// SubmitText answers a typed message
func (o *Orchestrator) SubmitText(ctx context.Context, text string) (*session.Turn, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.require("send a message", StateAwaitingInput); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	o.setState(StateProcessing)
	return o.process(ctx, text, "type", time.Now())
}

// Quit ends the conversation. An active recording is discarded and the
// session is dropped from memory; its file stays on disk.
func (o *Orchestrator) Quit() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateEnded {
		return
	}
	if o.state == StateCapturing {
		o.deps.Recorder.Stop()
	}
	o.deps.Store.Clear()
	o.setState(StateEnded)
	o.sessionLogger.Info().Msg("Conversation ended")
}

func (o *Orchestrator) require(op string, state State) error {
	if o.state == StateEnded {
		return ErrEnded
	}
	if o.state != state {
		return &TransitionError{Op: op, State: o.state}
	}
	return nil
}

// process runs one turn: prompt, generate, record, present.
// Any model or persistence failure returns to AwaitingInput without a turn.
func (o *Orchestrator) process(ctx context.Context, text, mode string, start time.Time) (*session.Turn, error) {
	logger := observability.WithCorrelationID(o.sessionLogger, "")
	defer o.setState(StateAwaitingInput)

	prompt := o.deps.Store.BuildTurnPrompt(text)
	reply, err := o.deps.Model.Generate(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Str("mode", mode).Msg("Reply generation failed")
		return nil, err
	}

	turn, err := o.deps.Store.Append(ctx, text, reply)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to record turn")
		return nil, err
	}
	observability.RecordTurn(mode)

	o.present(ctx, logger, reply)
	observability.ObserveTurn(start)
	logger.Info().
		Int("sequence", turn.Sequence).
		Str("mode", mode).
		Dur("duration", time.Since(start)).
		Msg("Turn complete")
	return &turn, nil
}

// present displays the reply, then speaks it. Speech failures are logged only.
func (o *Orchestrator) present(ctx context.Context, logger zerolog.Logger, reply string) {
	if o.deps.Display != nil {
		o.deps.Display.ShowReply(reply)
	}
	if o.deps.Renderer == nil || o.deps.Player == nil {
		return
	}

	buf, err := o.deps.Renderer.Render(ctx, reply)
	if err != nil {
		logger.Warn().Err(err).Msg("Speech rendering failed, reply shown as text only")
		return
	}
	if err := o.deps.Player.Play(ctx, buf); err != nil {
		logger.Warn().Err(err).Msg("Playback failed")
	}
}
