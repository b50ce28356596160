package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeStream struct {
	mu       sync.Mutex
	frames   [][]byte
	endless  []byte // Served forever once frames run out
	finalErr error  // Returned after frames when not endless
	closed   bool
	pending  []byte
}

func (s *fakeStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("read on closed stream")
	}
	if len(s.pending) == 0 {
		switch {
		case len(s.frames) > 0:
			s.pending = s.frames[0]
			s.frames = s.frames[1:]
		case s.endless != nil:
			time.Sleep(time.Millisecond)
			s.pending = s.endless
		case s.finalErr != nil:
			return 0, s.finalErr
		default:
			return 0, io.EOF
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeInput struct {
	stream  *fakeStream
	openErr error
	opens   int
}

func (d *fakeInput) Name() string { return "fake-mic" }

func (d *fakeInput) Open(ctx context.Context, format Format) (io.ReadCloser, error) {
	d.opens++
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.stream, nil
}

var testFormat = Format{SampleRate: 16000, Channels: 1, FramesPerBuffer: 160}

func waitClosed(t *testing.T, s *fakeStream) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !s.isClosed() {
		if time.Now().After(deadline) {
			t.Fatal("Expected stream to be closed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRecorder_StopWithoutFramesReturnsNil(t *testing.T) {
	stream := &fakeStream{}
	recorder := NewRecorder(&fakeInput{stream: stream}, testFormat, 500, zerolog.Nop())

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if buf := recorder.Stop(); buf != nil {
		t.Errorf("Expected nil buffer, got %d bytes", buf.Len())
	}
	if !stream.isClosed() {
		t.Error("Expected device stream to be closed after Stop")
	}
	if err := recorder.Start(context.Background()); err != nil {
		t.Errorf("Expected a new capture after Stop, got %v", err)
	}
	recorder.Stop()
}

func TestRecorder_CollectsFramesInOrder(t *testing.T) {
	first := pcmFrame(1000, 160)
	second := pcmFrame(2000, 160)
	third := pcmFrame(10, 160)
	stream := &fakeStream{frames: [][]byte{first, second, third}}
	recorder := NewRecorder(&fakeInput{stream: stream}, testFormat, 500, zerolog.Nop())

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitClosed(t, stream) // Reader hits EOF after the three frames

	buf := recorder.Stop()
	if buf == nil {
		t.Fatal("Expected captured audio")
	}
	expected := append(append(append([]byte{}, first...), second...), third...)
	if !bytes.Equal(buf.Data, expected) {
		t.Error("Expected frames concatenated in arrival order")
	}
	if buf.Encoding != EncodingPCM16 || buf.SampleRate != 16000 || buf.Channels != 1 {
		t.Errorf("Unexpected buffer format: %s %d %d", buf.Encoding, buf.SampleRate, buf.Channels)
	}
}

func TestRecorder_StopWhileStreaming(t *testing.T) {
	stream := &fakeStream{endless: pcmFrame(800, 160)}
	recorder := NewRecorder(&fakeInput{stream: stream}, testFormat, 500, zerolog.Nop())

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	buf := recorder.Stop()
	if buf == nil {
		t.Fatal("Expected captured audio")
	}
	if buf.Len()%testFormat.FrameBytes() != 0 {
		t.Errorf("Expected whole frames, got %d bytes", buf.Len())
	}
	if !stream.isClosed() {
		t.Error("Expected device stream to be closed after Stop")
	}
}

// stalledStream blocks in Read until it is closed
type stalledStream struct {
	once   sync.Once
	closed chan struct{}
}

func (s *stalledStream) Read(p []byte) (int, error) {
	<-s.closed
	return 0, errors.New("read on closed stream")
}

func (s *stalledStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type stalledInput struct{ stream *stalledStream }

func (d *stalledInput) Name() string { return "stalled-mic" }

func (d *stalledInput) Open(ctx context.Context, format Format) (io.ReadCloser, error) {
	return d.stream, nil
}

func TestRecorder_StopUnblocksStalledDevice(t *testing.T) {
	stream := &stalledStream{closed: make(chan struct{})}
	recorder := NewRecorder(&stalledInput{stream: stream}, testFormat, 500, zerolog.Nop())

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	done := make(chan *Buffer, 1)
	go func() { done <- recorder.Stop() }()

	select {
	case buf := <-done:
		if buf != nil {
			t.Errorf("Expected nil buffer, got %d bytes", buf.Len())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Stop to return while the device read was blocked")
	}
}

func TestRecorder_ReadErrorKeepsPartialAudio(t *testing.T) {
	frame := pcmFrame(1000, 160)
	stream := &fakeStream{frames: [][]byte{frame}, finalErr: errors.New("device unplugged")}
	recorder := NewRecorder(&fakeInput{stream: stream}, testFormat, 500, zerolog.Nop())

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitClosed(t, stream)

	buf := recorder.Stop()
	if buf == nil {
		t.Fatal("Expected partial audio to be kept")
	}
	if !bytes.Equal(buf.Data, frame) {
		t.Errorf("Expected %d bytes, got %d", len(frame), buf.Len())
	}
}

func TestRecorder_PartialFrameTrimmedToSamples(t *testing.T) {
	stream := &fakeStream{frames: [][]byte{{1, 2, 3, 4, 5}}}
	recorder := NewRecorder(&fakeInput{stream: stream}, testFormat, 500, zerolog.Nop())

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	waitClosed(t, stream)

	buf := recorder.Stop()
	if buf.Len() != 4 {
		t.Errorf("Expected 4 bytes, got %d", buf.Len())
	}
}

func TestRecorder_SecondStartFails(t *testing.T) {
	stream := &fakeStream{endless: pcmFrame(0, 160)}
	device := &fakeInput{stream: stream}
	recorder := NewRecorder(device, testFormat, 500, zerolog.Nop())

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer recorder.Stop()

	if err := recorder.Start(context.Background()); !errors.Is(err, ErrCaptureActive) {
		t.Errorf("Expected ErrCaptureActive, got %v", err)
	}
	if device.opens != 1 {
		t.Errorf("Expected device to be opened once, got %d", device.opens)
	}
}

func TestRecorder_OpenFailure(t *testing.T) {
	recorder := NewRecorder(&fakeInput{openErr: errors.New("no such device")}, testFormat, 500, zerolog.Nop())

	err := recorder.Start(context.Background())
	var deviceErr *DeviceError
	if !errors.As(err, &deviceErr) {
		t.Fatalf("Expected DeviceError, got %v", err)
	}
	if deviceErr.Op != "open" {
		t.Errorf("Expected op 'open', got %s", deviceErr.Op)
	}
	if buf := recorder.Stop(); buf != nil {
		t.Error("Expected nil buffer when no capture is active")
	}
}
