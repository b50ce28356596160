package tts

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/provider"
	"github.com/lexiqai/voice-companion/internal/resilience"
)

// OpenAIClient implements Synthesizer using the OpenAI speech endpoint (mp3)
type OpenAIClient struct {
	client         *openai.Client
	model          string
	voice          string
	timeout        time.Duration
	retry          *resilience.RetryConfig
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger
}

// NewOpenAIClient creates a speech client sharing the chat API credentials
func NewOpenAIClient(cfg *config.Config, logger zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:  provider.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.RequestTimeout),
		model:   cfg.OpenAITTSModel,
		voice:   cfg.OpenAITTSVoice,
		timeout: cfg.RequestTimeout,
		retry:   provider.RetryConfig(cfg),
		circuitBreaker: provider.NewBreaker(
			"openai_tts",
			cfg.CircuitBreakerMaxFailures,
			cfg.CircuitBreakerResetTimeout,
		),
		logger: logger.With().Str("component", "tts").Str("provider", "openai").Logger(),
	}
}

// Markup sends plain text; the speech endpoint reads SSML tags aloud
func (c *OpenAIClient) Markup(chunk string) string {
	return strings.TrimSpace(chunk)
}

func (c *OpenAIClient) Output() Output {
	return Output{Encoding: audio.EncodingMP3}
}

// Synthesize converts one chunk to mp3. Mp3 frames from successive chunks concatenate.
func (c *OpenAIClient) Synthesize(ctx context.Context, markup string) ([]byte, error) {
	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.model),
		Input:          markup,
		Voice:          openai.SpeechVoice(c.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	var audioData []byte
	err := provider.Call(ctx, c.circuitBreaker, c.retry, func(ctx context.Context) error {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		resp, err := c.client.CreateSpeech(ctx, req)
		if err != nil {
			return err
		}
		defer resp.Close()

		audioData, err = io.ReadAll(resp)
		if err != nil {
			return fmt.Errorf("failed to read speech response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("speech endpoint returned empty audio")
	}

	c.logger.Debug().Int("bytes", len(audioData)).Int("chars", len(markup)).Msg("Chunk synthesized")
	return audioData, nil
}
