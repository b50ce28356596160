package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/audio"
	"github.com/lexiqai/voice-companion/internal/config"
	"github.com/lexiqai/voice-companion/internal/console"
	"github.com/lexiqai/voice-companion/internal/llm"
	"github.com/lexiqai/voice-companion/internal/observability"
	"github.com/lexiqai/voice-companion/internal/orchestrator"
	"github.com/lexiqai/voice-companion/internal/session"
	"github.com/lexiqai/voice-companion/internal/stt"
	"github.com/lexiqai/voice-companion/internal/tts"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logOut io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty, logOut)
	logger := observability.GetLogger()

	logger.Info().
		Str("transcriber", cfg.Transcriber).
		Str("tts_provider", cfg.TTSProvider).
		Bool("speech_enabled", cfg.SpeechEnabled).
		Str("sessions_dir", cfg.SessionsDir).
		Str("log_level", cfg.LogLevel).
		Msg("Voice companion starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Voice companion stopped")
		stop()
		os.Exit(1)
	}
	logger.Info().Msg("Voice companion stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	var transcriber stt.Transcriber
	switch cfg.Transcriber {
	case config.ProviderDeepgram:
		transcriber = stt.NewDeepgramClient(cfg, logger)
	default:
		transcriber = stt.NewWhisperClient(cfg, logger)
	}

	model := llm.NewModerator(llm.NewOpenAI(cfg, logger), transcriber, cfg.PersonaName, logger)
	store := session.NewStore(model, session.Options{
		Dir:           cfg.SessionsDir,
		Persona:       cfg.PersonaName,
		ContextWindow: cfg.ContextWindow,
		MaxTurns:      cfg.SessionMaxTurns,
	}, logger)

	ui := console.New(os.Stdin, os.Stdout, cfg.PersonaName, logger)
	deps := orchestrator.Deps{
		Model:   model,
		Store:   store,
		Display: ui,
	}
	if cfg.SpeechEnabled {
		deps.Recorder = audio.NewRecorder(
			audio.NewCommandInput(cfg.RecordCommand),
			audio.Format{
				SampleRate:      cfg.SampleRate,
				Channels:        cfg.AudioChannels,
				FramesPerBuffer: cfg.ChunkSize,
			},
			cfg.VADEnergyThreshold,
			logger,
		)
		deps.Player = audio.NewPlayer(audio.NewCommandOutput(cfg.PlayCommand), "", logger)
		deps.Renderer = tts.NewRenderer(newSynthesizer(cfg, logger), cfg.TTSMaxChunk, logger)
	}

	if cfg.MetricsEnabled {
		server := newMetricsServer(cfg)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("Metrics server listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("Metrics server shutdown failed")
			}
		}()
	}

	return ui.Run(ctx, orchestrator.New(deps, logger))
}

func newSynthesizer(cfg *config.Config, logger zerolog.Logger) tts.Synthesizer {
	if cfg.TTSProvider == config.ProviderCartesia {
		return tts.NewCartesiaClient(cfg, logger)
	}
	return tts.NewOpenAIClient(cfg, logger)
}

func newMetricsServer(cfg *config.Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", observability.HealthCheckHandler())

	sessionsCheck := func(ctx context.Context) (bool, error) {
		if err := os.MkdirAll(cfg.SessionsDir, 0o755); err != nil {
			return false, err
		}
		f, err := os.CreateTemp(cfg.SessionsDir, ".ready-*")
		if err != nil {
			return false, err
		}
		name := f.Name()
		f.Close()
		return true, os.Remove(filepath.Clean(name))
	}
	providersCheck := func(ctx context.Context) (bool, error) {
		// Validate has already checked keys; no request is made to avoid API costs
		if err := cfg.Validate(); err != nil {
			return false, err
		}
		return true, nil
	}
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"sessions":  sessionsCheck,
		"providers": providersCheck,
	}))

	return &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
