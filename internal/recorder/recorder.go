package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/audio"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/vad"
)

var (
	// ErrMicrophoneUnavailable is returned when the capture device cannot be opened,
	// either because access was denied or because no input device exists.
	ErrMicrophoneUnavailable = errors.New("microphone unavailable")

	// ErrAlreadyRecording is returned by Start while a session is active
	ErrAlreadyRecording = errors.New("recording already in progress")

	// ErrNotRecording is returned by Stop when no session is active
	ErrNotRecording = errors.New("not recording")
)

// Device opens audio input pipelines
type Device interface {
	// Open starts delivering frames of frameSize mono samples to onFrame.
	// The device may not honor requestedRate; the returned Capture reports
	// the rate actually in use.
	Open(ctx context.Context, requestedRate, frameSize int, onFrame func([]float32)) (Capture, error)
}

// Capture is an open input pipeline
type Capture interface {
	// SampleRate returns the rate frames are captured at
	SampleRate() int
	// Disconnect detaches the frame callback
	Disconnect() error
	// Close closes the processing context
	Close() error
	// Stop releases the hardware stream
	Stop() error
}

// Config contains recorder configuration
type Config struct {
	SampleRate     int     // requested rate
	FrameSize      int     // samples per callback
	VoiceThreshold float32 // 0 selects vad.DefaultThreshold
}

// Recording is the result of a stopped capture session
type Recording struct {
	WAV        []byte
	SampleRate int
	NumSamples int
	Duration   time.Duration

	// Voice activity found in the captured samples
	Voice vad.Result
}

// Observer receives recording lifecycle events, typically metrics
type Observer interface {
	RecordingStarted()
	RecordingStopped(durationSeconds float64, wavBytes int, voiceRatio float64)
}

// Recorder owns the state of one capture session at a time
type Recorder struct {
	device   Device
	config   Config
	logger   *slog.Logger
	observer Observer
	detector *vad.Detector

	capture   Capture
	buffer    *audio.Buffer
	recording bool

	mu sync.Mutex
}

// New creates a recorder using device
func New(device Device, config Config, logger *slog.Logger) *Recorder {
	if config.SampleRate <= 0 {
		config.SampleRate = 16000
	}
	if config.FrameSize <= 0 {
		config.FrameSize = audio.DefaultFrameSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "recorder"))

	detector, err := vad.NewDetector(vad.Config{Threshold: config.VoiceThreshold})
	if err != nil {
		logger.Warn("Invalid voice threshold, using default",
			slog.Float64("threshold", float64(config.VoiceThreshold)),
			slog.String("error", err.Error()),
		)
		detector, _ = vad.NewDetector(vad.Config{})
	}

	return &Recorder{
		device:   device,
		config:   config,
		logger:   logger,
		detector: detector,
	}
}

// VoiceStats returns voice activity statistics across all recordings
func (r *Recorder) VoiceStats() vad.DetectorStats {
	return r.detector.GetStats()
}

// SetObserver registers an observer for recording events
func (r *Recorder) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

// IsRecording reports whether a capture session is active
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start opens the device and begins buffering frames
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}

	buffer := audio.NewBuffer(r.config.SampleRate)
	capture, err := r.device.Open(ctx, r.config.SampleRate, r.config.FrameSize, buffer.Append)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMicrophoneUnavailable, err)
	}

	// The WAV header must carry the rate the device actually used
	actualRate := capture.SampleRate()
	if actualRate <= 0 {
		actualRate = r.config.SampleRate
	}
	buffer.SetSampleRate(actualRate)

	r.capture = capture
	r.buffer = buffer
	r.recording = true

	if actualRate != r.config.SampleRate {
		r.logger.Info("Device substituted sample rate",
			slog.Int("requested", r.config.SampleRate),
			slog.Int("actual", actualRate),
		)
	}
	r.logger.Debug("Recording started", slog.Int("sample_rate", actualRate), slog.Int("frame_size", r.config.FrameSize))

	if r.observer != nil {
		r.observer.RecordingStarted()
	}

	return nil
}

// Stop tears down the capture pipeline and encodes the buffered samples as WAV.
// Teardown is best-effort: disconnect, close, stop, each failure logged and ignored.
func (r *Recorder) Stop() (*Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return nil, ErrNotRecording
	}

	r.teardown()

	samples := r.buffer.Merge()
	rate := r.buffer.SampleRate()
	wav := audio.EncodeWAV(samples, rate)
	rec := &Recording{
		WAV:        wav,
		SampleRate: rate,
		NumSamples: len(samples),
		Duration:   r.buffer.Duration(),
		Voice:      r.detector.Analyze(samples, rate),
	}

	r.logger.Debug("Recording stopped",
		slog.Int("samples", rec.NumSamples),
		slog.Int("chunks", r.buffer.ChunkCount()),
		slog.Int("sample_rate", rate),
		slog.Duration("duration", rec.Duration),
		slog.Int("wav_bytes", len(wav)),
		slog.Float64("voice_ratio", rec.Voice.VoiceRatio),
		slog.Int("voice_segments", len(rec.Voice.Segments)),
	)

	if r.observer != nil {
		r.observer.RecordingStopped(rec.Duration.Seconds(), len(wav), rec.Voice.VoiceRatio)
	}

	r.capture = nil
	r.buffer = nil
	r.recording = false

	return rec, nil
}

func (r *Recorder) teardown() {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"disconnect", r.capture.Disconnect},
		{"close", r.capture.Close},
		{"stop", r.capture.Stop},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			r.logger.Debug("Capture teardown step failed",
				slog.String("step", step.name),
				slog.String("error", err.Error()),
			)
		}
	}
}
