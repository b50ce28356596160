package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/provider"
	"github.com/lexiqai/voice-companion/internal/resilience"
)

// WhisperClient implements Transcriber using the OpenAI transcription endpoint
type WhisperClient struct {
	client         *openai.Client
	model          string
	timeout        time.Duration
	retry          *resilience.RetryConfig
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger
}

// NewWhisperClient creates a transcription client sharing the chat API credentials
func NewWhisperClient(cfg *config.Config, logger zerolog.Logger) *WhisperClient {
	return &WhisperClient{
		client:  provider.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.RequestTimeout),
		model:   cfg.OpenAITranscribeModel,
		timeout: cfg.RequestTimeout,
		retry:   provider.RetryConfig(cfg),
		circuitBreaker: provider.NewBreaker(
			"whisper",
			cfg.CircuitBreakerMaxFailures,
			cfg.CircuitBreakerResetTimeout,
		),
		logger: logger.With().Str("component", "stt").Str("provider", "openai").Logger(),
	}
}

func (w *WhisperClient) Name() string {
	return config.ProviderOpenAI
}

// Transcribe uploads the recording as a WAV file
func (w *WhisperClient) Transcribe(ctx context.Context, buf *audio.Buffer) (*TranscriptionResult, error) {
	wav, duration, err := prepare(buf)
	if err != nil {
		return nil, err
	}

	var resp openai.AudioResponse
	err = provider.Call(ctx, w.circuitBreaker, w.retry, func(ctx context.Context) error {
		if w.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
			defer cancel()
		}
		var callErr error
		resp, callErr = w.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    w.model,
			FilePath: "utterance.wav",
			Reader:   bytes.NewReader(wav.Data),
			Format:   openai.AudioResponseFormatJSON,
		})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	if resp.Duration == 0 {
		resp.Duration = duration
	}
	w.logger.Debug().
		Int("audio_bytes", wav.Len()).
		Float64("duration", resp.Duration).
		Msg("Whisper transcription complete")
	return &TranscriptionResult{
		Text:     strings.TrimSpace(resp.Text),
		Duration: resp.Duration,
		Language: resp.Language,
	}, nil
}
