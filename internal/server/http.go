package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/backend"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/config"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/metrics"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/transcript"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/vad"
)

const (
	serviceName    = "interviewiq"
	serviceVersion = "1.0.0"
)

// BackendStats exposes backend client statistics
type BackendStats interface {
	GetStats() backend.ClientStats
}

// RecorderState reports the recorder activity
type RecorderState interface {
	IsRecording() bool
	VoiceStats() vad.DetectorStats
}

// TranscriptSource provides the current conversation
type TranscriptSource interface {
	Messages() []transcript.Message
	Len() int
}

// Sources are the components the status server reports on
type Sources struct {
	Backend    BackendStats
	Recorder   RecorderState
	Transcript TranscriptSource
}

// HTTPServer is the local status server of the client
type HTTPServer struct {
	server   *http.Server
	logger   *slog.Logger
	config   *config.Config
	sources  Sources
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	startTime time.Time
}

// NewHTTPServer creates a status server. gatherer serves /metrics; nil uses the default registry.
func NewHTTPServer(appConfig *config.Config, logger *slog.Logger, sources Sources, m *metrics.Metrics, gatherer prometheus.Gatherer) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &HTTPServer{
		logger:    logger.With(slog.String("component", "status_server")),
		config:    appConfig,
		sources:   sources,
		metrics:   m,
		gatherer:  gatherer,
		startTime: time.Now(),
	}

	h.server = &http.Server{
		Addr:         appConfig.Status.GetAddress(),
		Handler:      h.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// Routes builds the router
func (h *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", h.withMetrics("/", h.handleRoot))
	r.Get("/health", h.withMetrics("/health", h.handleHealth))
	r.Get("/stats", h.withMetrics("/stats", h.handleStats))
	r.Get("/config", h.withMetrics("/config", h.handleConfig))
	r.Get("/transcript", h.withMetrics("/transcript", h.handleTranscript))

	// Scrapes are not counted
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	return r
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		handler(ww, r)

		if h.metrics == nil {
			return
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.RecordHTTPRequest(r.Method, endpoint, fmt.Sprintf("%d", status), time.Since(startTime).Seconds())
	}
}

// Start listens on the configured address and serves in the background
func (h *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.server.Addr, err)
	}

	h.logger.Info("Starting status server", slog.String("address", ln.Addr().String()))

	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("Status server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the status server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping status server...")
	return h.server.Shutdown(ctx)
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
		"service": map[string]any{
			"name":    serviceName,
			"version": serviceVersion,
		},
		"components": map[string]any{
			"backend": map[string]any{
				"base_url": h.config.Backend.BaseURL,
			},
			"recorder": map[string]any{
				"device":    h.config.Audio.Device,
				"recording": h.recording(),
			},
		},
	}

	writeJSON(w, health)
}

func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC(),
		"recording": h.recording(),
	}
	if h.sources.Backend != nil {
		stats["backend"] = h.sources.Backend.GetStats()
	}
	if h.sources.Transcript != nil {
		stats["transcript"] = map[string]any{"messages": h.sources.Transcript.Len()}
	}
	if h.sources.Recorder != nil {
		stats["voice"] = h.sources.Recorder.VoiceStats()
	}

	writeJSON(w, stats)
}

// handleConfig returns the configuration without the API key
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	sanitized := map[string]any{
		"backend": map[string]any{
			"base_url":    h.config.Backend.BaseURL,
			"session_id":  h.config.Backend.SessionID,
			"timeout":     h.config.Backend.Timeout,
			"use_resume":  h.config.Backend.UseResume,
			"api_key_set": h.config.Backend.APIKey != "",
		},
		"audio": map[string]any{
			"sample_rate": h.config.Audio.SampleRate,
			"frame_size":  h.config.Audio.FrameSize,
			"device":      h.config.Audio.Device,
			"input_file":  h.config.Audio.InputFile,
		},
		"preferences": map[string]any{
			"path": h.config.Preferences.Path,
		},
		"logging": map[string]any{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	writeJSON(w, sanitized)
}

func (h *HTTPServer) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages := []transcript.Message{}
	if h.sources.Transcript != nil {
		messages = h.sources.Transcript.Messages()
	}

	writeJSON(w, map[string]any{
		"total_messages": len(messages),
		"messages":       messages,
	})
}

func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	apiDoc := map[string]any{
		"service": "InterviewIQ client status",
		"version": serviceVersion,
		"endpoints": map[string]any{
			"GET /":           "API documentation",
			"GET /health":     "Client health check",
			"GET /stats":      "Backend call statistics and recording state",
			"GET /config":     "Active configuration without secrets",
			"GET /transcript": "Messages of the current conversation",
			"GET /metrics":    "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, apiDoc)
}

func (h *HTTPServer) recording() bool {
	return h.sources.Recorder != nil && h.sources.Recorder.IsRecording()
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
