package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeWAV_Header(t *testing.T) {
	pcm := pcmFrame(1000, 1600)
	wav, err := EncodeWAV(pcm, 16000, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(wav) != wavHeaderSize+len(pcm) {
		t.Errorf("Expected %d bytes, got %d", wavHeaderSize+len(pcm), len(wav))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) {
		t.Error("Expected RIFF marker")
	}
	if !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Error("Expected WAVE marker")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Errorf("Expected chunk size %d, got %d", 36+len(pcm), got)
	}
	if !bytes.Equal(wav[wavHeaderSize:], pcm) {
		t.Error("Expected PCM payload to follow the header unchanged")
	}
}

func TestEncodeWAV_Invalid(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000, 1); err == nil {
		t.Error("Expected error for empty audio")
	}
	if _, err := EncodeWAV([]byte{1, 2}, 0, 1); err == nil {
		t.Error("Expected error for zero sample rate")
	}
	if _, err := EncodeWAV([]byte{1, 2}, 16000, 2); err == nil {
		t.Error("Expected error for a partial stereo frame")
	}
}

func TestReadWAVInfo(t *testing.T) {
	pcm := pcmFrame(0, 44100*2) // One second of stereo
	wav, err := EncodeWAV(pcm, 44100, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	info, err := ReadWAVInfo(wav)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if info.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", info.SampleRate)
	}
	if info.Channels != 2 {
		t.Errorf("Expected 2 channels, got %d", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", info.BitsPerSample)
	}
	if info.Duration != 1.0 {
		t.Errorf("Expected duration 1.0s, got %f", info.Duration)
	}
}

func TestReadWAVInfo_Invalid(t *testing.T) {
	if _, err := ReadWAVInfo([]byte("short")); err == nil {
		t.Error("Expected error for short data")
	}
	bad := make([]byte, wavHeaderSize)
	copy(bad, "RIFX")
	if _, err := ReadWAVInfo(bad); err == nil {
		t.Error("Expected error for bad RIFF marker")
	}
}
