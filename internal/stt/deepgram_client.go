package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/provider"
	"github.com/lexiqai/voice-companion/internal/resilience"
)

// recognizeFunc sends one recording and returns the raw JSON response
type recognizeFunc func(ctx context.Context, src io.Reader) ([]byte, error)

// prerecordedResponse is the subset of Deepgram's prerecorded response we read
type prerecordedResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// DeepgramClient implements Transcriber using Deepgram's prerecorded API
type DeepgramClient struct {
	language       string
	recognize      recognizeFunc
	timeout        time.Duration
	retry          *resilience.RetryConfig
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger
}

// NewDeepgramClient creates a new Deepgram prerecorded client
func NewDeepgramClient(cfg *config.Config, logger zerolog.Logger) *DeepgramClient {
	c := listenClient.NewREST(cfg.DeepgramAPIKey, &interfaces.ClientOptions{})
	dg := api.New(c)

	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       cfg.DeepgramModel,
		Language:    cfg.DeepgramLanguage,
		Punctuate:   true,
		SmartFormat: true,
	}

	recognize := func(ctx context.Context, src io.Reader) ([]byte, error) {
		res, err := dg.FromStream(ctx, src, options)
		if err != nil {
			return nil, err
		}
		// Re-encode so only the fields above are depended on
		return sonic.Marshal(res)
	}

	return newDeepgramClient(cfg, recognize, logger)
}

func newDeepgramClient(cfg *config.Config, recognize recognizeFunc, logger zerolog.Logger) *DeepgramClient {
	return &DeepgramClient{
		language:  cfg.DeepgramLanguage,
		recognize: recognize,
		timeout:   cfg.RequestTimeout,
		retry:     provider.RetryConfig(cfg),
		circuitBreaker: provider.NewBreaker(
			"deepgram",
			cfg.CircuitBreakerMaxFailures,
			cfg.CircuitBreakerResetTimeout,
		),
		logger: logger.With().Str("component", "stt").Str("provider", "deepgram").Logger(),
	}
}

func (d *DeepgramClient) Name() string {
	return config.ProviderDeepgram
}

// Transcribe uploads the recording as WAV and returns the best alternative
func (d *DeepgramClient) Transcribe(ctx context.Context, buf *audio.Buffer) (*TranscriptionResult, error) {
	wav, duration, err := prepare(buf)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = provider.Call(ctx, d.circuitBreaker, d.retry, func(ctx context.Context) error {
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		var callErr error
		raw, callErr = d.recognize(ctx, bytes.NewReader(wav.Data))
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("deepgram transcription failed: %w", err)
	}

	result, err := parsePrerecorded(raw)
	if err != nil {
		return nil, err
	}
	if result.Language == "" {
		result.Language = d.language
	}
	if result.Duration == 0 {
		result.Duration = duration
	}

	d.logger.Debug().
		Int("audio_bytes", wav.Len()).
		Float64("confidence", result.Confidence).
		Float64("duration", result.Duration).
		Msg("Deepgram transcription complete")
	return result, nil
}

// parsePrerecorded extracts the first alternative of the first channel
func parsePrerecorded(raw []byte) (*TranscriptionResult, error) {
	var resp prerecordedResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode deepgram response: %w", err)
	}

	result := &TranscriptionResult{Duration: resp.Metadata.Duration}
	if len(resp.Results.Channels) == 0 {
		return result, nil
	}
	channel := resp.Results.Channels[0]
	result.Language = channel.DetectedLanguage
	if len(channel.Alternatives) == 0 {
		return result, nil
	}

	alt := channel.Alternatives[0]
	result.Text = strings.TrimSpace(alt.Transcript)
	result.Confidence = alt.Confidence
	return result, nil
}
