package audio

import (
	"math"
	"testing"
)

func pcmFrame(amplitude int16, samples int) []byte {
	frame := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		frame[i*2] = byte(uint16(amplitude))
		frame[i*2+1] = byte(uint16(amplitude) >> 8)
	}
	return frame
}

func TestSamplesFromPCM(t *testing.T) {
	samples := SamplesFromPCM([]byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80, 0x7F})
	if len(samples) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(samples))
	}
	if samples[0] != 1 {
		t.Errorf("Expected 1, got %d", samples[0])
	}
	if samples[1] != -1 {
		t.Errorf("Expected -1, got %d", samples[1])
	}
	if samples[2] != math.MinInt16 {
		t.Errorf("Expected %d, got %d", math.MinInt16, samples[2])
	}
}

func TestSpeechDetector_ProcessFrame_Speech(t *testing.T) {
	detector := NewSpeechDetector(500.0)
	frame := pcmFrame(5000, 160)

	for i := 0; i < 5; i++ {
		if !detector.ProcessFrame(frame) {
			t.Errorf("Expected speech detection on frame %d", i)
		}
	}

	stats := detector.Stats()
	if stats.Frames != 5 || stats.VoicedFrames != 5 {
		t.Errorf("Expected 5/5 voiced frames, got %d/%d", stats.VoicedFrames, stats.Frames)
	}
	if !stats.HasSpeech() {
		t.Error("Expected HasSpeech to be true")
	}
}

func TestSpeechDetector_ProcessFrame_Silence(t *testing.T) {
	detector := NewSpeechDetector(500.0)
	frame := pcmFrame(10, 160)

	for i := 0; i < 15; i++ {
		if detector.ProcessFrame(frame) {
			t.Errorf("Expected silence on frame %d", i)
		}
	}
	if detector.Stats().HasSpeech() {
		t.Error("Expected no speech in silent capture")
	}
}

func TestSpeechDetector_PeakAndReset(t *testing.T) {
	detector := NewSpeechDetector(0) // Defaults to 500

	detector.ProcessFrame(pcmFrame(100, 160))
	detector.ProcessFrame(pcmFrame(3000, 160))
	detector.ProcessFrame(pcmFrame(200, 160))

	stats := detector.Stats()
	if stats.PeakRMS != 3000 {
		t.Errorf("Expected peak RMS 3000, got %f", stats.PeakRMS)
	}
	if stats.VoicedFrames != 1 {
		t.Errorf("Expected 1 voiced frame, got %d", stats.VoicedFrames)
	}

	detector.Reset()
	if detector.Stats().Frames != 0 {
		t.Errorf("Expected 0 frames after reset, got %d", detector.Stats().Frames)
	}
}

func TestCalculateRMS(t *testing.T) {
	// Test with constant amplitude
	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = 1000
	}

	rms := CalculateRMS(samples)
	expected := 1000.0
	if math.Abs(rms-expected) > 1.0 {
		t.Errorf("Expected RMS ~%f, got %f", expected, rms)
	}
}

func TestCalculateRMS_Empty(t *testing.T) {
	rms := CalculateRMS([]int16{})
	if rms != 0.0 {
		t.Errorf("Expected RMS 0 for empty samples, got %f", rms)
	}
}
