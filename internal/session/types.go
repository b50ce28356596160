package session

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoSession is returned when a turn is appended before Start
	ErrNoSession = errors.New("no active session")

	// ErrSessionFull is returned once a session holds the configured maximum of turns
	ErrSessionFull = errors.New("session has reached its turn limit")

	// ErrEmptyTopic is returned by Start for a blank topic
	ErrEmptyTopic = errors.New("topic must not be empty")
)

// BeginningTag is the only context tag of the opening turn
const BeginningTag = "beginning conversation"

// Turn is one recorded user/assistant exchange. Turns are never edited once appended.
type Turn struct {
	Sequence   int       `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	UserInput  string    `json:"user_input"` // Empty for the opening turn
	AIResponse string    `json:"ai_response"`
	Context    []string  `json:"context"`
}

// Snapshot is the persisted form of a session
type Snapshot struct {
	SessionID    string `json:"session_id"`
	CurrentTopic string `json:"current_topic"`
	History      []Turn `json:"history"`
}

// PersistenceError reports a failed read or write of a session file
type PersistenceError struct {
	Op   string // "create", "write", "read"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
