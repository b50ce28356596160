package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/resilience"
	"github.com/sashabaranov/go-openai"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"rate limited", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"server error", fmt.Errorf("chat: %w", &openai.APIError{HTTPStatusCode: 503}), true},
		{"bad request", &openai.APIError{HTTPStatusCode: http.StatusBadRequest}, false},
		{"unauthorized request", &openai.RequestError{HTTPStatusCode: http.StatusUnauthorized}, false},
		{"gateway", &openai.RequestError{HTTPStatusCode: http.StatusBadGateway}, true},
		{"plain http 500", &StatusError{Provider: "cartesia", StatusCode: 500}, true},
		{"plain http 422", &StatusError{Provider: "cartesia", StatusCode: 422}, false},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"circuit open", resilience.ErrCircuitOpen, false},
		{"cancelled", context.Canceled, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCall_RetriesThroughBreaker(t *testing.T) {
	breaker := NewBreaker("test", 5, time.Minute)
	retry := &resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}

	attempts := 0
	err := Call(context.Background(), breaker, retry, func(context.Context) error {
		attempts++
		if attempts < 2 {
			return &StatusError{Provider: "test", StatusCode: 503}
		}
		return nil
	})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestCall_DoesNotRetryClientErrors(t *testing.T) {
	breaker := NewBreaker("test", 5, time.Minute)
	retry := &resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}

	attempts := 0
	err := Call(context.Background(), breaker, retry, func(context.Context) error {
		attempts++
		return &StatusError{Provider: "test", StatusCode: 400}
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("Expected StatusError, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryConfig(t *testing.T) {
	cfg := &config.Config{RetryMaxAttempts: 5, RetryInitialBackoff: 50 * time.Millisecond}
	retry := RetryConfig(cfg)
	if retry.MaxAttempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", retry.MaxAttempts)
	}
	if retry.InitialBackoff != 50*time.Millisecond {
		t.Errorf("Expected 50ms backoff, got %v", retry.InitialBackoff)
	}

	defaults := RetryConfig(&config.Config{})
	if defaults.MaxAttempts != 3 {
		t.Errorf("Expected default 3 attempts, got %d", defaults.MaxAttempts)
	}
}
