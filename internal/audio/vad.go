package audio

import (
	"math"
)

// SamplesFromPCM decodes little-endian 16-bit PCM; a trailing odd byte is ignored
func SamplesFromPCM(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return samples
}

// CalculateRMS calculates the root mean square (RMS) of audio samples
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// LevelStats summarizes the energy of a capture
type LevelStats struct {
	Frames       int
	VoicedFrames int
	PeakRMS      float64
}

// HasSpeech reports whether any frame crossed the energy threshold
func (s LevelStats) HasSpeech() bool {
	return s.VoicedFrames > 0
}

// SpeechDetector classifies captured frames as voiced or silent by RMS energy.
// It is not safe for concurrent use; the capture collector owns it.
type SpeechDetector struct {
	threshold float64
	stats     LevelStats
}

// NewSpeechDetector creates a detector; a non-positive threshold defaults to 500
func NewSpeechDetector(threshold float64) *SpeechDetector {
	if threshold <= 0 {
		threshold = 500.0
	}
	return &SpeechDetector{threshold: threshold}
}

// ProcessFrame records one PCM frame and reports whether it is voiced
func (d *SpeechDetector) ProcessFrame(pcm []byte) bool {
	rms := CalculateRMS(SamplesFromPCM(pcm))
	d.stats.Frames++
	if rms > d.stats.PeakRMS {
		d.stats.PeakRMS = rms
	}
	voiced := rms > d.threshold
	if voiced {
		d.stats.VoicedFrames++
	}
	return voiced
}

// Stats returns the counters accumulated so far
func (d *SpeechDetector) Stats() LevelStats {
	return d.stats
}

// Reset clears the accumulated counters
func (d *SpeechDetector) Reset() {
	d.stats = LevelStats{}
}
