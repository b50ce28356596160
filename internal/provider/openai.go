// Package provider holds the HTTP plumbing shared by the hosted model,
// transcription and speech clients.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/observability"
	"github.com/lexiqai/voice-companion/internal/resilience"
	"github.com/sashabaranov/go-openai"
)

// NewOpenAIClient builds a go-openai client. An empty baseURL keeps the public API.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(config)
}

// StatusError is a non-2xx response from a provider that speaks plain HTTP
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// RetryableStatus reports whether an HTTP status is worth retrying
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}

// IsRetryable classifies provider errors for resilience.Retry
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, resilience.ErrCircuitOpen) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return RetryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return RetryableStatus(reqErr.HTTPStatusCode)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return RetryableStatus(statusErr.StatusCode)
	}
	return resilience.IsRetryableNetworkError(err)
}

// NewBreaker creates a circuit breaker whose state is exported as a metric
func NewBreaker(name string, maxFailures int, resetTimeout time.Duration) *resilience.CircuitBreaker {
	breaker := resilience.NewCircuitBreaker(name, maxFailures, resetTimeout)
	breaker.OnStateChange = func(name string, state resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(state))
	}
	observability.UpdateCircuitBreakerState(name, int(resilience.StateClosed))
	return breaker
}

// Call runs fn through the breaker with retries
func Call(ctx context.Context, breaker *resilience.CircuitBreaker, retry *resilience.RetryConfig, fn resilience.RetryableFunc) error {
	return resilience.Retry(ctx, func(ctx context.Context) error {
		err := breaker.Execute(ctx, fn)
		if err != nil && ctx.Err() == nil && !errors.Is(err, resilience.ErrCircuitOpen) {
			observability.IncrementCircuitBreakerFailures(breaker.Name())
		}
		return err
	}, retry, IsRetryable)
}

// RetryConfig derives the retry policy from configuration
func RetryConfig(cfg *config.Config) *resilience.RetryConfig {
	retry := resilience.DefaultRetryConfig()
	if cfg.RetryMaxAttempts > 0 {
		retry.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialBackoff > 0 {
		retry.InitialBackoff = cfg.RetryInitialBackoff
	}
	return retry
}
