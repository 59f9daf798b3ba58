package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/backend"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/chat"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/config"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/metrics"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/preferences"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/recorder"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/recorder/mic"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/server"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/transcript"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/ui"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "interviewiq"
	serviceVersion    = "1.0.0"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	backendURL := flag.String("backend", "", "Backend base URL (overrides config)")
	audioFile := flag.String("audio-file", "", "Replay this WAV file instead of using the microphone")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", serviceName, serviceVersion)
		return
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load environment file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	}
	if *audioFile != "" {
		cfg.Audio.Device = config.DeviceFile
		cfg.Audio.InputFile = *audioFile
	}
	if *noColor {
		cfg.Logging.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := initLogger(cfg.Logging)
	defer closeLog()

	if err := run(cfg, logger); err != nil {
		logger.Error("Client exited with error", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Client starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
	)

	logger.Info("Configuration loaded",
		slog.String("backend_url", cfg.Backend.BaseURL),
		slog.String("session_id", cfg.Backend.SessionID),
		slog.Bool("use_resume", cfg.Backend.UseResume),
		slog.String("audio_device", cfg.Audio.Device),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("frame_size", cfg.Audio.FrameSize),
		slog.Float64("vad_threshold", cfg.Audio.VADThreshold),
		slog.String("preferences_path", cfg.Preferences.Path),
		slog.Bool("status_enabled", cfg.Status.Enabled),
		slog.String("log_level", cfg.Logging.Level),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Prometheus metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(registry)

	// Restore the theme preference; a broken store only disables persistence
	session := chat.NewSession(cfg.Backend.SessionID, cfg.Backend.UseResume)
	var themeStore chat.ThemeStore
	store, err := preferences.Open(cfg.Preferences.Path)
	if err != nil {
		logger.Warn("Preferences unavailable, theme changes will not persist",
			slog.String("path", cfg.Preferences.Path),
			slog.String("error", err.Error()),
		)
	} else {
		defer store.Close()
		themeStore = store

		dark, found, err := store.LoadTheme()
		switch {
		case err != nil:
			logger.Warn("Failed to read theme preference", slog.String("error", err.Error()))
		case found:
			session.SetDarkTheme(dark)
		}
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		SessionID: cfg.Backend.SessionID,
		Timeout:   cfg.Backend.GetTimeoutDuration(),
		UserAgent: fmt.Sprintf("%s/%s", serviceName, serviceVersion),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}
	client.SetObserver(appMetrics)

	rec := recorder.New(newDevice(cfg.Audio), recorder.Config{
		SampleRate:     cfg.Audio.SampleRate,
		FrameSize:      cfg.Audio.FrameSize,
		VoiceThreshold: float32(cfg.Audio.VADThreshold),
	}, logger)
	rec.SetObserver(appMetrics)
	defer func() {
		if rec.IsRecording() {
			if _, err := rec.Stop(); err != nil {
				logger.Debug("Failed to stop recording on exit", slog.String("error", err.Error()))
			}
		}
	}()

	opts := []chat.Option{chat.WithObserver(appMetrics)}
	if themeStore != nil {
		opts = append(opts, chat.WithThemeStore(themeStore))
	}
	orchestrator := chat.NewOrchestrator(session, client, rec, logger, opts...)

	out, color := ui.TerminalOutput(os.Stdout, cfg.Logging.NoColor)
	view := ui.NewView(out, transcript.New(), session.DarkTheme(), color)
	view.Restore(session.DarkTheme(), session.UseResume())

	// Initialize status server (if enabled)
	if cfg.Status.Enabled {
		status := server.NewHTTPServer(cfg, logger, server.Sources{
			Backend:    client,
			Recorder:   rec,
			Transcript: view.Transcript(),
		}, appMetrics, registry)
		if err := status.Start(); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := status.Stop(shutdownCtx); err != nil {
				logger.Error("Error stopping status server", slog.String("error", err.Error()))
			}
		}()
	}

	if cfg.Backend.APIKey != "" {
		orchestrator.Handle(ctx, chat.SaveAPIKey{Key: cfg.Backend.APIKey}, view.Apply)
	}

	app := ui.NewApp(view, orchestrator, logger)
	err = app.Run(ctx, os.Stdin)

	stats := client.GetStats()
	logger.Info("Final backend statistics",
		slog.Uint64("total_requests", stats.TotalRequests),
		slog.Uint64("success_requests", stats.SuccessRequests),
		slog.Uint64("failed_requests", stats.FailedRequests),
		slog.Duration("avg_response_time", stats.AvgResponseTime),
	)
	voice := rec.VoiceStats()
	logger.Info("Final voice activity statistics",
		slog.Uint64("total_windows", voice.TotalWindows),
		slog.Uint64("voice_windows", voice.VoiceWindows),
		slog.Float64("voice_percentage", voice.VoicePercentage),
	)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Client stopped")
	return nil
}

func newDevice(cfg config.AudioConfig) recorder.Device {
	if cfg.Device == config.DeviceFile {
		return recorder.NewFileDevice(cfg.InputFile, cfg.Realtime)
	}
	return mic.NewDevice()
}

// initLogger creates the structured logger. File output is rotated by lumberjack.
func initLogger(cfg config.LoggingConfig) (*slog.Logger, func()) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output io.Writer = os.Stdout
	closeFn := func() {}
	switch {
	case cfg.IsFileOutput():
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log directory for %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
			break
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		output = rotator
		closeFn = func() { rotator.Close() }
	case cfg.Output == "stderr":
		output = os.Stderr
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler), closeFn
}
