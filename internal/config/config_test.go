package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-openai-key")
	t.Setenv("TRANSCRIBER", "")
	t.Setenv("TTS_PROVIDER", "")
	os.Unsetenv("TRANSCRIBER")
	os.Unsetenv("TTS_PROVIDER")
}

func TestLoad(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.OpenAIAPIKey != "test-openai-key" {
		t.Errorf("Expected OpenAIAPIKey 'test-openai-key', got '%s'", cfg.OpenAIAPIKey)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	_, err := LoadFromEnv()
	if err == nil {
		t.Error("Expected error when OPENAI_API_KEY is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("Expected default OpenAIModel 'gpt-4o-mini', got '%s'", cfg.OpenAIModel)
	}
	if cfg.LLMMaxTokens != 150 {
		t.Errorf("Expected default LLMMaxTokens 150, got %d", cfg.LLMMaxTokens)
	}
	if cfg.Transcriber != ProviderOpenAI {
		t.Errorf("Expected default Transcriber 'openai', got '%s'", cfg.Transcriber)
	}
	if cfg.TTSProvider != ProviderOpenAI {
		t.Errorf("Expected default TTSProvider 'openai', got '%s'", cfg.TTSProvider)
	}
	if cfg.TTSMaxChunk != 1500 {
		t.Errorf("Expected default TTSMaxChunk 1500, got %d", cfg.TTSMaxChunk)
	}
	if cfg.SessionsDir != "sessions_history" {
		t.Errorf("Expected default SessionsDir 'sessions_history', got '%s'", cfg.SessionsDir)
	}
	if cfg.PersonaName != "ADAM" {
		t.Errorf("Expected default PersonaName 'ADAM', got '%s'", cfg.PersonaName)
	}
	if cfg.ContextWindow != 3 {
		t.Errorf("Expected default ContextWindow 3, got %d", cfg.ContextWindow)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("Expected default SampleRate 44100, got %d", cfg.SampleRate)
	}
	if cfg.FrameBytes() != 2048 {
		t.Errorf("Expected FrameBytes 2048, got %d", cfg.FrameBytes())
	}
}

func TestLoad_DeepgramRequiresKey(t *testing.T) {
	setRequired(t)
	t.Setenv("TRANSCRIBER", "Deepgram")
	t.Setenv("DEEPGRAM_API_KEY", "")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error when DEEPGRAM_API_KEY is missing for deepgram transcriber")
	}

	t.Setenv("DEEPGRAM_API_KEY", "test-deepgram-key")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}
	if cfg.Transcriber != ProviderDeepgram {
		t.Errorf("Expected Transcriber normalized to 'deepgram', got '%s'", cfg.Transcriber)
	}
}

func TestLoad_CartesiaRequiresKey(t *testing.T) {
	setRequired(t)
	t.Setenv("TTS_PROVIDER", "cartesia")
	t.Setenv("CARTESIA_API_KEY", "")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error when CARTESIA_API_KEY is missing for cartesia provider")
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	setRequired(t)
	t.Setenv("TTS_PROVIDER", "polly")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error for unknown TTS_PROVIDER")
	}
}

func TestConfig_ResilienceDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("Expected default RequestTimeout 30s, got %v", cfg.RequestTimeout)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Errorf("Expected default RetryMaxAttempts 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != 200*time.Millisecond {
		t.Errorf("Expected default RetryInitialBackoff 200ms, got %v", cfg.RetryInitialBackoff)
	}
	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}
}

func TestConfig_ObservabilityDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", cfg.LogLevel)
	}
	if !cfg.LogPretty {
		t.Error("Expected default LogPretty true, got false")
	}
	if cfg.MetricsEnabled {
		t.Error("Expected default MetricsEnabled false, got true")
	}
}

func TestValidate_Bounds(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() failed: %v", err)
	}

	cfg.TTSMaxChunk = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero TTSMaxChunk")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_KEY", "test-value")

	value := GetEnv("TEST_KEY", "default")
	if value != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", value)
	}

	value = GetEnv("NON_EXISTENT_KEY", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}
