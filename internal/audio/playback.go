package audio

import (
	"context"
	"fmt"
	"os"

	"github.com/lexiqai/voice-companion/internal/observability"
	"github.com/rs/zerolog"
)

// Player plays rendered audio through an output device
type Player struct {
	device  OutputDevice
	tempDir string // Empty means os.TempDir
	logger  zerolog.Logger
}

// NewPlayer creates a player for the given output device
func NewPlayer(device OutputDevice, tempDir string, logger zerolog.Logger) *Player {
	return &Player{
		device:  device,
		tempDir: tempDir,
		logger:  logger.With().Str("component", "playback").Logger(),
	}
}

// Play writes buf to a temporary file, plays it to completion and removes the file.
// Nil and empty buffers are ignored.
func (p *Player) Play(ctx context.Context, buf *Buffer) error {
	if buf.IsEmpty() {
		return nil
	}

	payload := buf
	if buf.Encoding == EncodingPCM16 {
		wav, err := buf.ToWAV()
		if err != nil {
			return p.fail(&DeviceError{Op: "play", Device: p.device.Name(), Err: err})
		}
		payload = wav
	}

	path, err := p.writeTemp(payload)
	if err != nil {
		return p.fail(&DeviceError{Op: "play", Device: p.device.Name(), Err: err})
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove playback file")
		}
	}()

	if err := p.device.PlayFile(ctx, path); err != nil {
		return p.fail(&DeviceError{Op: "play", Device: p.device.Name(), Err: err})
	}

	observability.RecordPlayback(true)
	observability.RecordAudioBytes("out", payload.Len())
	p.logger.Debug().Int("bytes", payload.Len()).Str("encoding", string(payload.Encoding)).Msg("Playback finished")
	return nil
}

func (p *Player) writeTemp(buf *Buffer) (string, error) {
	f, err := os.CreateTemp(p.tempDir, "companion-*"+buf.Encoding.FileExtension())
	if err != nil {
		return "", fmt.Errorf("failed to create playback file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(buf.Data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write playback file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close playback file: %w", err)
	}
	return path, nil
}

func (p *Player) fail(err error) error {
	observability.RecordPlayback(false)
	observability.RecordError("device_play", "playback")
	return err
}
