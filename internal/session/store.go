package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/llm"
	"github.com/lexiqai/voice-companion/internal/observability"
)

// Model is the part of the language model the store needs
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Summarize(ctx context.Context, exchanges []llm.Exchange) ([]string, error)
}

// Options configures a Store
type Options struct {
	Dir           string // Root of all session directories
	Persona       string // Assistant label in prompts and context
	ContextWindow int    // Prior turns used for context and tags
	MaxTurns      int    // Zero means unbounded

	Now func() time.Time // Defaults to time.Now
}

// Store owns the turn history of the current conversation and its file on disk.
// The snapshot on disk always equals the in-memory history after a successful call.
type Store struct {
	model  Model
	opts   Options
	logger zerolog.Logger

	mu    sync.Mutex
	id    string
	topic string
	turns []Turn
}

// NewStore creates a store; zero options fall back to the defaults
func NewStore(model Model, opts Options, logger zerolog.Logger) *Store {
	if opts.Dir == "" {
		opts.Dir = "sessions_history"
	}
	if opts.Persona == "" {
		opts.Persona = "ADAM"
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		model:  model,
		opts:   opts,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// NewSessionID returns YYYYMMDD_HHMMSS_ followed by 8 random hex characters
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return now.Format("20060102_150405") + "_" + suffix
}

// Start opens a new session for topic, persists it and records the model's
// opening reply as turn 0. The previous session's file is left untouched, and
// on failure the previous session stays current.
func (s *Store) Start(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyTopic
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := NewSessionID(s.opts.Now())
	dir := filepath.Join(s.opts.Dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &PersistenceError{Op: "create", Path: dir, Err: err}
	}

	prevID, prevTopic, prevTurns := s.id, s.topic, s.turns
	restore := func() {
		s.id, s.topic, s.turns = prevID, prevTopic, prevTurns
	}

	s.id, s.topic, s.turns = id, topic, nil
	if err := writeSnapshot(s.opts.Dir, s.snapshotLocked()); err != nil {
		restore()
		return "", err
	}
	observability.RecordSessionStart()

	logger := observability.WithSession(s.logger, id)
	logger.Info().Str("topic", topic).Msg("Session started")

	reply, err := s.model.Generate(ctx, OpeningPrompt(s.opts.Persona, topic))
	if err != nil {
		logger.Error().Err(err).Msg("Opening reply failed")
		restore()
		return "", err
	}
	if _, err := s.appendLocked(ctx, "", reply); err != nil {
		restore()
		return "", err
	}
	observability.RecordTurn("opening")
	return reply, nil
}

// Append records a turn. Context tags are derived from the prior turns only.
// If the snapshot cannot be written the turn is discarded.
func (s *Store) Append(ctx context.Context, userInput, aiResponse string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ctx, userInput, aiResponse)
}

func (s *Store) appendLocked(ctx context.Context, userInput, aiResponse string) (Turn, error) {
	if s.id == "" {
		return Turn{}, ErrNoSession
	}
	if s.opts.MaxTurns > 0 && len(s.turns) >= s.opts.MaxTurns {
		return Turn{}, ErrSessionFull
	}

	turn := Turn{
		Sequence:   len(s.turns),
		Timestamp:  s.nextTimestamp(),
		UserInput:  userInput,
		AIResponse: aiResponse,
		Context:    s.contextTags(ctx),
	}

	// Full slice expression so a failed write never aliases into s.turns
	next := append(s.turns[:len(s.turns):len(s.turns)], turn)
	snap := &Snapshot{SessionID: s.id, CurrentTopic: s.topic, History: next}
	if err := writeSnapshot(s.opts.Dir, snap); err != nil {
		observability.RecordError("persistence", "session")
		logger := observability.WithSession(s.logger, s.id)
		logger.Error().Err(err).Int("sequence", turn.Sequence).Msg("Failed to persist turn")
		return Turn{}, err
	}
	s.turns = next

	logger := observability.WithSession(s.logger, s.id)
	logger.Debug().
		Int("sequence", turn.Sequence).
		Strs("context", turn.Context).
		Msg("Turn recorded")
	return turn, nil
}

// contextTags summarizes a copy of the recent prior turns
func (s *Store) contextTags(ctx context.Context) []string {
	if len(s.turns) == 0 {
		return []string{BeginningTag}
	}

	recent := s.recentLocked()
	exchanges := make([]llm.Exchange, len(recent))
	for i, turn := range recent {
		exchanges[i] = llm.Exchange{UserInput: turn.UserInput, AIResponse: turn.AIResponse}
	}

	tags, err := s.model.Summarize(ctx, exchanges)
	if err != nil {
		logger := observability.WithSession(s.logger, s.id)
		logger.Warn().Err(err).Msg("Context analysis failed, storing turn without tags")
		return []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}

func (s *Store) nextTimestamp() time.Time {
	now := s.opts.Now()
	if n := len(s.turns); n > 0 {
		if last := s.turns[n-1].Timestamp; !now.After(last) {
			now = last.Add(time.Nanosecond)
		}
	}
	return now
}

func (s *Store) recentLocked() []Turn {
	start := len(s.turns) - s.opts.ContextWindow
	if start < 0 {
		start = 0
	}
	return s.turns[start:]
}

// BuildContext renders the topic and the last turns for the next prompt
func (s *Store) BuildContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FormatContext(s.opts.Persona, s.topic, s.recentLocked())
}

// BuildTurnPrompt returns the full prompt for a reply to userInput
func (s *Store) BuildTurnPrompt(userInput string) string {
	return TurnPrompt(s.opts.Persona, s.BuildContext(), userInput)
}

// Clear forgets the current session in memory. Files on disk are kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.id, s.topic, s.turns = "", "", nil
}

// ID returns the current session id, empty when there is none
func (s *Store) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Topic returns the current topic
func (s *Store) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Path returns the snapshot file of the current session
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return ""
	}
	return HistoryPath(s.opts.Dir, s.id)
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *Snapshot {
	history := make([]Turn, len(s.turns))
	copy(history, s.turns)
	return &Snapshot{SessionID: s.id, CurrentTopic: s.topic, History: history}
}
