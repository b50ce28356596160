package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/provider"
	"github.com/lexiqai/voice-companion/internal/resilience"
)

// OpenAIClient implements Completer over the chat completions API
type OpenAIClient struct {
	client         *openai.Client
	model          string
	maxTokens      int
	temperature    float32
	timeout        time.Duration
	retry          *resilience.RetryConfig
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger
}

// NewOpenAI creates a chat client. OPENAI_BASE_URL may point at any compatible gateway.
func NewOpenAI(cfg *config.Config, logger zerolog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:      provider.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.RequestTimeout),
		model:       cfg.OpenAIModel,
		maxTokens:   cfg.LLMMaxTokens,
		temperature: cfg.LLMTemperature,
		timeout:     cfg.RequestTimeout,
		retry:       provider.RetryConfig(cfg),
		circuitBreaker: provider.NewBreaker(
			"llm",
			cfg.CircuitBreakerMaxFailures,
			cfg.CircuitBreakerResetTimeout,
		),
		logger: logger.With().Str("component", "llm").Str("model", cfg.OpenAIModel).Logger(),
	}
}

// Complete sends prompt as a single user message and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	var resp openai.ChatCompletionResponse
	err := provider.Call(ctx, c.circuitBreaker, c.retry, func(ctx context.Context) error {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("Chat completion received")
	return content, nil
}
