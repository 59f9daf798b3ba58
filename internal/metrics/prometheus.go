package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics of the InterviewIQ client.
// It satisfies the observer interfaces of the backend client, the recorder
// and the chat orchestrator.
type Metrics struct {
	// Backend call metrics
	BackendRequests        *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec

	// Recording metrics
	RecordingActive    prometheus.Gauge
	RecordingsStarted  prometheus.Counter
	RecordingsFinished prometheus.Counter
	RecordingDuration  prometheus.Histogram
	RecordingSize      prometheus.Histogram
	RecordingVoice     prometheus.Histogram

	// Intent metrics
	IntentsHandled  *prometheus.CounterVec
	IntentsRejected *prometheus.CounterVec

	// Status server metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates all metrics and registers them with reg.
// A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		BackendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewiq_backend_requests_total",
			Help: "Total number of backend requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		BackendRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interviewiq_backend_request_duration_seconds",
			Help:    "Duration of backend requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"endpoint"}),

		RecordingActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "interviewiq_recording_active",
			Help: "1 while the microphone is recording",
		}),
		RecordingsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "interviewiq_recordings_started_total",
			Help: "Total number of recordings started",
		}),
		RecordingsFinished: factory.NewCounter(prometheus.CounterOpts{
			Name: "interviewiq_recordings_finished_total",
			Help: "Total number of recordings stopped and encoded",
		}),
		RecordingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "interviewiq_recording_duration_seconds",
			Help:    "Duration of encoded recordings",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 9), // 0.5s to ~2 minutes
		}),
		RecordingSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "interviewiq_recording_size_bytes",
			Help:    "Size of encoded WAV recordings",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to ~16MB
		}),
		RecordingVoice: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "interviewiq_recording_voice_ratio",
			Help:    "Share of each recording classified as voice",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		IntentsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewiq_intents_handled_total",
			Help: "Total number of user intents processed",
		}, []string{"intent"}),
		IntentsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewiq_intents_rejected_total",
			Help: "Total number of user intents rejected before any request",
		}, []string{"intent", "reason"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewiq_http_requests_total",
			Help: "Total number of status server requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "interviewiq_http_request_duration_seconds",
			Help:    "Duration of status server requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// RequestFinished records a completed backend request
func (m *Metrics) RequestFinished(endpoint, outcome string, durationSeconds float64) {
	m.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.BackendRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordingStarted marks the microphone as active
func (m *Metrics) RecordingStarted() {
	m.RecordingsStarted.Inc()
	m.RecordingActive.Set(1)
}

// RecordingStopped records an encoded recording
func (m *Metrics) RecordingStopped(durationSeconds float64, wavBytes int, voiceRatio float64) {
	m.RecordingActive.Set(0)
	m.RecordingsFinished.Inc()
	m.RecordingDuration.Observe(durationSeconds)
	m.RecordingSize.Observe(float64(wavBytes))
	m.RecordingVoice.Observe(voiceRatio)
}

// IntentHandled increments the handled counter of an intent
func (m *Metrics) IntentHandled(intent string) {
	m.IntentsHandled.WithLabelValues(intent).Inc()
}

// IntentRejected records an intent dropped by input validation
func (m *Metrics) IntentRejected(intent, reason string) {
	m.IntentsRejected.WithLabelValues(intent, reason).Inc()
}

// RecordHTTPRequest records a status server request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
