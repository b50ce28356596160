package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lexiqai/voice-companion/internal/observability"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// captureQueueSize bounds the frames buffered between reader and collector
const captureQueueSize = 64

// Recorder captures microphone audio between Start and Stop.
// At most one capture is active at a time.
type Recorder struct {
	device    InputDevice
	format    Format
	threshold float64
	logger    zerolog.Logger

	mu     sync.Mutex
	active *captureSession
}

type captureSession struct {
	stop      chan struct{}
	stream    io.ReadCloser
	closeOnce sync.Once
	group     *errgroup.Group
	started   time.Time
	detector  *SpeechDetector

	// Owned by the collector goroutine until group.Wait returns
	frames [][]byte
	bytes  int
}

// NewRecorder creates a recorder for the given device and format
func NewRecorder(device InputDevice, format Format, vadThreshold float64, logger zerolog.Logger) *Recorder {
	return &Recorder{
		device:    device,
		format:    format,
		threshold: vadThreshold,
		logger:    logger.With().Str("component", "capture").Logger(),
	}
}

// Start opens the input device and begins collecting frames in the background.
// The device is opened before Start returns so open failures are reported here.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return ErrCaptureActive
	}
	frameBytes := r.format.FrameBytes()
	if frameBytes <= 0 {
		return &DeviceError{Op: "open", Device: r.device.Name(), Err: fmt.Errorf("invalid frame size %d", frameBytes)}
	}

	stream, err := r.device.Open(ctx, r.format)
	if err != nil {
		observability.RecordError("device_open", "capture")
		return &DeviceError{Op: "open", Device: r.device.Name(), Err: err}
	}

	s := &captureSession{
		stop:     make(chan struct{}),
		stream:   stream,
		group:    new(errgroup.Group),
		started:  time.Now(),
		detector: NewSpeechDetector(r.threshold),
	}
	frames := make(chan []byte, captureQueueSize)
	s.group.Go(func() error {
		return r.readFrames(ctx, s, frames)
	})
	s.group.Go(func() error {
		s.collect(frames)
		return nil
	})
	r.active = s

	r.logger.Info().
		Str("device", r.device.Name()).
		Int("sample_rate", r.format.SampleRate).
		Int("channels", r.format.Channels).
		Msg("Recording started")
	return nil
}

// Stop signals the capture goroutines, closes the device so a blocked read
// returns, waits for them and returns the audio captured so far. It returns
// nil when nothing was captured or no capture is active.
func (r *Recorder) Stop() *Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.active
	if s == nil {
		return nil
	}
	close(s.stop)
	s.closeStream(r.logger)
	if err := s.group.Wait(); err != nil {
		observability.RecordError("device_read", "capture")
		r.logger.Warn().Err(err).Msg("Recording ended early, keeping partial audio")
	}
	r.active = nil

	stats := s.detector.Stats()
	observability.RecordCaptureFrames(stats.Frames, stats.VoicedFrames)
	observability.RecordAudioBytes("in", s.bytes)
	r.logger.Info().
		Int("frames", stats.Frames).
		Int("voiced_frames", stats.VoicedFrames).
		Float64("peak_rms", stats.PeakRMS).
		Int("bytes", s.bytes).
		Dur("duration", time.Since(s.started)).
		Msg("Recording stopped")

	if s.bytes == 0 {
		return nil
	}
	if !stats.HasSpeech() {
		r.logger.Debug().Msg("No frame crossed the speech threshold")
	}

	data := make([]byte, 0, s.bytes)
	for _, frame := range s.frames {
		data = append(data, frame...)
	}
	return &Buffer{
		Data:       data,
		Encoding:   EncodingPCM16,
		SampleRate: r.format.SampleRate,
		Channels:   r.format.Channels,
	}
}

// readFrames reads fixed-size frames until stop, ctx cancellation or a read error.
// The stream is closed on every exit path.
func (r *Recorder) readFrames(ctx context.Context, s *captureSession, out chan<- []byte) error {
	defer close(out)
	defer s.closeStream(r.logger)

	frameBytes := r.format.FrameBytes()
	sampleBytes := 2 * r.format.Channels
	for {
		select {
		case <-s.stop:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		frame := make([]byte, frameBytes)
		n, err := io.ReadFull(s.stream, frame)
		n -= n % sampleBytes
		if n > 0 {
			out <- frame[:n]
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				r.logger.Debug().Msg("Input stream ended")
				return nil
			}
			select {
			case <-s.stop:
				// Stop closed the stream under a pending read
				return nil
			default:
			}
			return &DeviceError{Op: "read", Device: r.device.Name(), Err: err}
		}
	}
}

func (s *captureSession) closeStream(logger zerolog.Logger) {
	s.closeOnce.Do(func() {
		if err := s.stream.Close(); err != nil {
			logger.Debug().Err(err).Msg("Input stream close failed")
		}
	})
}

func (s *captureSession) collect(in <-chan []byte) {
	for frame := range in {
		s.frames = append(s.frames, frame)
		s.bytes += len(frame)
		s.detector.ProcessFrame(frame)
	}
}
