package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexiqai/voice-companion/internal/audio"
)

// ErrNoAudio is returned when there is nothing to transcribe
var ErrNoAudio = errors.New("no audio to transcribe")

// TranscriptionResult represents a completed transcription of one utterance
type TranscriptionResult struct {
	// Text is the transcribed text, possibly empty for silence
	Text string

	// Confidence is the confidence score (0.0 to 1.0) if available
	Confidence float64

	// Duration is the duration of the audio in seconds if available
	Duration float64

	// Language is the detected or requested language
	Language string
}

// Transcriber converts a recorded utterance into text
type Transcriber interface {
	// Name identifies the provider in logs and metrics
	Name() string

	// Transcribe sends a complete recording and waits for its transcript
	Transcribe(ctx context.Context, buf *audio.Buffer) (*TranscriptionResult, error)
}

// prepare wraps raw PCM in a WAV container so hosted services can detect the
// format. It also returns the recording length in seconds.
func prepare(buf *audio.Buffer) (*audio.Buffer, float64, error) {
	if buf.IsEmpty() {
		return nil, 0, ErrNoAudio
	}
	wav, err := buf.ToWAV()
	if err != nil {
		return nil, 0, err
	}
	info, err := audio.ReadWAVInfo(wav.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid recording: %w", err)
	}
	return wav, info.Duration, nil
}
