package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Provider names accepted by TRANSCRIBER and TTS_PROVIDER.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepgram = "deepgram"
	ProviderCartesia = "cartesia"
)

// Config holds all configuration for the voice companion
type Config struct {
	// Language model (OpenAI-compatible chat completions)
	OpenAIAPIKey   string  `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIBaseURL  string  `envconfig:"OPENAI_BASE_URL" default:""` // Optional, e.g. an OpenRouter or local gateway URL
	OpenAIModel    string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	LLMMaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"150"`
	LLMTemperature float32 `envconfig:"LLM_TEMPERATURE" default:"0.9"`

	// Speech-to-text
	Transcriber           string `envconfig:"TRANSCRIBER" default:"openai"` // openai, deepgram
	OpenAITranscribeModel string `envconfig:"OPENAI_TRANSCRIBE_MODEL" default:"whisper-1"`
	DeepgramAPIKey        string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel         string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"` // nova-2, enhanced, base
	DeepgramLanguage      string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`

	// Text-to-speech
	TTSProvider     string `envconfig:"TTS_PROVIDER" default:"openai"` // openai, cartesia
	OpenAITTSModel  string `envconfig:"OPENAI_TTS_MODEL" default:"tts-1"`
	OpenAITTSVoice  string `envconfig:"OPENAI_TTS_VOICE" default:"alloy"`
	CartesiaAPIKey  string `envconfig:"CARTESIA_API_KEY" default:""`
	CartesiaVoiceID string `envconfig:"CARTESIA_VOICE_ID" default:"a0e99841-438c-4a64-b679-ae501e7d6091"`
	CartesiaModelID string `envconfig:"CARTESIA_MODEL_ID" default:"sonic"`
	TTSMaxChunk     int    `envconfig:"TTS_MAX_CHUNK" default:"1500"` // Characters per synthesis request
	SpeechEnabled   bool   `envconfig:"SPEECH_ENABLED" default:"true"`

	// Conversation
	SessionsDir     string `envconfig:"SESSIONS_DIR" default:"sessions_history"`
	PersonaName     string `envconfig:"PERSONA_NAME" default:"ADAM"`
	ContextWindow   int    `envconfig:"CONTEXT_WINDOW" default:"3"`       // Prior turns used for prompts and context tags
	SessionMaxTurns int    `envconfig:"SESSION_MAX_TURNS" default:"1000"` // Turns per session before a new topic is required

	// Audio devices
	SampleRate         int     `envconfig:"SAMPLE_RATE" default:"44100"`
	ChunkSize          int     `envconfig:"CHUNK_SIZE" default:"1024"` // Frames per device read
	AudioChannels      int     `envconfig:"AUDIO_CHANNELS" default:"1"`
	RecordCommand      string  `envconfig:"RECORD_COMMAND" default:"arecord -q -t raw -f S16_LE -r {rate} -c {channels}"`
	PlayCommand        string  `envconfig:"PLAY_COMMAND" default:"ffplay -nodisp -autoexit -loglevel quiet {file}"`
	VADEnergyThreshold float64 `envconfig:"VAD_ENERGY_THRESHOLD" default:"500.0"` // RMS energy threshold for voiced frames

	// Resilience
	RequestTimeout             time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	RetryMaxAttempts           int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff        time.Duration `envconfig:"RETRY_INITIAL_BACKOFF" default:"200ms"`
	CircuitBreakerMaxFailures  int           `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`
	CircuitBreakerResetTimeout time.Duration `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30s"`

	// Observability
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"true"`
	LogFile        string `envconfig:"LOG_FILE" default:""` // Empty logs to stderr
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsAddr    string `envconfig:"METRICS_ADDR" default:"127.0.0.1:9090"`
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks provider-specific requirements and numeric bounds
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	c.Transcriber = strings.ToLower(c.Transcriber)
	switch c.Transcriber {
	case ProviderOpenAI:
	case ProviderDeepgram:
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required when TRANSCRIBER=deepgram")
		}
	default:
		return fmt.Errorf("unknown TRANSCRIBER %q", c.Transcriber)
	}

	c.TTSProvider = strings.ToLower(c.TTSProvider)
	switch c.TTSProvider {
	case ProviderOpenAI:
	case ProviderCartesia:
		if c.CartesiaAPIKey == "" {
			return fmt.Errorf("CARTESIA_API_KEY is required when TTS_PROVIDER=cartesia")
		}
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
	}

	if c.TTSMaxChunk <= 0 {
		return fmt.Errorf("TTS_MAX_CHUNK must be positive, got %d", c.TTSMaxChunk)
	}
	if c.ContextWindow <= 0 {
		return fmt.Errorf("CONTEXT_WINDOW must be positive, got %d", c.ContextWindow)
	}
	if c.SampleRate <= 0 || c.ChunkSize <= 0 || c.AudioChannels <= 0 {
		return fmt.Errorf("SAMPLE_RATE, CHUNK_SIZE and AUDIO_CHANNELS must be positive")
	}
	if c.SessionMaxTurns < 0 {
		return fmt.Errorf("SESSION_MAX_TURNS must not be negative, got %d", c.SessionMaxTurns)
	}
	return nil
}

// FrameBytes returns the size in bytes of one device read (16-bit samples)
func (c *Config) FrameBytes() int {
	return c.ChunkSize * c.AudioChannels * 2
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
