package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/provider"
	"github.com/lexiqai/voice-companion/internal/resilience"
)

const (
	cartesiaURL        = "https://api.cartesia.ai/tts/bytes"
	cartesiaVersion    = "2024-06-10"
	cartesiaSampleRate = 24000
)

// CartesiaClient implements Synthesizer using Cartesia's bytes endpoint.
// It requests raw pcm16 so chunk outputs can be concatenated.
type CartesiaClient struct {
	apiKey         string
	apiURL         string
	voiceID        string
	modelID        string
	language       string
	httpClient     *http.Client
	retry          *resilience.RetryConfig
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger
}

// CartesiaRequest represents the request payload for the Cartesia TTS API
type CartesiaRequest struct {
	ModelID      string               `json:"model_id"`
	Transcript   string               `json:"transcript"`
	Voice        CartesiaVoice        `json:"voice"`
	OutputFormat CartesiaOutputFormat `json:"output_format"`
	Language     string               `json:"language,omitempty"`
}

// CartesiaVoice selects a voice by id
type CartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

// CartesiaOutputFormat describes the requested audio container
type CartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

// NewCartesiaClient creates a new Cartesia TTS client
func NewCartesiaClient(cfg *config.Config, logger zerolog.Logger) *CartesiaClient {
	return &CartesiaClient{
		apiKey:     cfg.CartesiaAPIKey,
		apiURL:     cartesiaURL,
		voiceID:    cfg.CartesiaVoiceID,
		modelID:    cfg.CartesiaModelID,
		language:   "en",
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		retry:      provider.RetryConfig(cfg),
		circuitBreaker: provider.NewBreaker(
			"cartesia",
			cfg.CircuitBreakerMaxFailures,
			cfg.CircuitBreakerResetTimeout,
		),
		logger: logger.With().Str("component", "tts").Str("provider", "cartesia").Logger(),
	}
}

// Markup sends plain text; Cartesia does not accept SSML
func (c *CartesiaClient) Markup(chunk string) string {
	return strings.TrimSpace(chunk)
}

func (c *CartesiaClient) Output() Output {
	return Output{Encoding: audio.EncodingPCM16, SampleRate: cartesiaSampleRate, Channels: 1}
}

// Synthesize converts one chunk to raw pcm16 audio
func (c *CartesiaClient) Synthesize(ctx context.Context, markup string) ([]byte, error) {
	reqBody := CartesiaRequest{
		ModelID:    c.modelID,
		Transcript: markup,
		Voice:      CartesiaVoice{Mode: "id", ID: c.voiceID},
		OutputFormat: CartesiaOutputFormat{
			Container:  "raw",
			Encoding:   "pcm_s16le",
			SampleRate: cartesiaSampleRate,
		},
		Language: c.language,
	}

	jsonData, err := sonic.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var audioData []byte
	err = provider.Call(ctx, c.circuitBreaker, c.retry, func(ctx context.Context) error {
		var callErr error
		audioData, callErr = c.post(ctx, jsonData)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("cartesia returned empty audio data")
	}

	c.logger.Debug().Int("bytes", len(audioData)).Int("chars", len(markup)).Msg("Chunk synthesized")
	return audioData, nil
}

func (c *CartesiaClient) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &provider.StatusError{Provider: "cartesia", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	return audioData, nil
}
