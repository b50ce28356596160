package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversation metrics
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companion_sessions_started_total",
		Help: "Total number of conversation sessions started",
	})

	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_turns_total",
		Help: "Total number of recorded conversation turns",
	}, []string{"mode"}) // mode: "opening", "speak", "type"

	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "companion_turn_duration_seconds",
		Help:    "Time from user input to the end of reply playback",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
	})

	// Language model metrics
	modelRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_model_requests_total",
		Help: "Total number of language model requests",
	}, []string{"op", "status"}) // op: "generate", "transcribe", "summarize"

	modelLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "companion_model_latency_seconds",
		Help:    "Language model latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	}, []string{"op"})

	// TTS metrics
	ttsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_tts_requests_total",
		Help: "Total number of speech render requests",
	}, []string{"status"})

	ttsLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "companion_tts_latency_seconds",
		Help:    "Speech rendering latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	ttsChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companion_tts_chunks_total",
		Help: "Total number of text chunks sent to the synthesizer",
	})

	// Audio metrics
	audioBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_audio_bytes_total",
		Help: "Total audio bytes processed",
	}, []string{"direction"}) // direction: "in" or "out"

	captureFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_capture_frames_total",
		Help: "Total captured frames",
	}, []string{"kind"}) // kind: "all", "voiced"

	playbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_playback_total",
		Help: "Total playback attempts",
	}, []string{"status"})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "companion_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companion_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordSessionStart records a new conversation session
func RecordSessionStart() {
	sessionsStarted.Inc()
}

// RecordTurn records a turn that was durably appended
func RecordTurn(mode string) {
	turnsTotal.WithLabelValues(mode).Inc()
}

// ObserveTurn records the wall time of a full user turn
func ObserveTurn(start time.Time) {
	turnDuration.Observe(time.Since(start).Seconds())
}

// ObserveModel records a language model call
func ObserveModel(op string, start time.Time, success bool) {
	modelLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	modelRequests.WithLabelValues(op, status(success)).Inc()
}

// ObserveTTS records a speech render
func ObserveTTS(start time.Time, chunks int, success bool) {
	ttsLatency.Observe(time.Since(start).Seconds())
	ttsRequests.WithLabelValues(status(success)).Inc()
	ttsChunks.Add(float64(chunks))
}

// RecordAudioBytes records audio bytes processed
func RecordAudioBytes(direction string, bytes int) {
	audioBytes.WithLabelValues(direction).Add(float64(bytes))
}

// RecordCaptureFrames records captured and voiced frame counts
func RecordCaptureFrames(total, voiced int) {
	captureFrames.WithLabelValues("all").Add(float64(total))
	captureFrames.WithLabelValues("voiced").Add(float64(voiced))
}

// RecordPlayback records a playback attempt
func RecordPlayback(success bool) {
	playbackTotal.WithLabelValues(status(success)).Inc()
}

// RecordError records an error
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
