package vad

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Defaults tuned for speech captured at 16 kHz
const (
	DefaultThreshold  = 0.1
	DefaultWindowSize = 512

	// fullScaleRMS maps to probability 1
	fullScaleRMS = 0.3
	// smoothing is the weight of the newest window
	smoothing = 0.5
)

// Config contains detector parameters
type Config struct {
	// Threshold is the smoothed probability at which a window counts as voice
	Threshold  float32
	WindowSize int
}

// Detector classifies fixed-size windows as voice or silence
type Detector struct {
	threshold  float32
	windowSize int

	// Statistics across all analyzed recordings
	totalWindows uint64
	voiceWindows uint64

	mu sync.Mutex
}

// Segment is a continuous stretch of voice activity
type Segment struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// Duration returns the segment length
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// Result summarizes the voice activity of one recording
type Result struct {
	TotalWindows int       `json:"total_windows"`
	VoiceWindows int       `json:"voice_windows"`
	VoiceRatio   float64   `json:"voice_ratio"`
	Segments     []Segment `json:"segments"`
}

// HasVoice reports whether any window contained speech
func (r Result) HasVoice() bool {
	return r.VoiceWindows > 0
}

// DetectorStats represents detector statistics
type DetectorStats struct {
	TotalWindows    uint64  `json:"total_windows"`
	VoiceWindows    uint64  `json:"voice_windows"`
	VoicePercentage float64 `json:"voice_percentage"`
	Threshold       float32 `json:"threshold"`
}

// NewDetector creates a detector; zero values select the defaults
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = DefaultWindowSize
	}

	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be between 0 and 1, got %f", cfg.Threshold)
	}

	if cfg.WindowSize < 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", cfg.WindowSize)
	}

	return &Detector{threshold: cfg.Threshold, windowSize: cfg.WindowSize}, nil
}

// Analyze scans samples window by window. A trailing partial window is
// analyzed as well so short recordings are not reported as silent.
func (d *Detector) Analyze(samples []float32, sampleRate int) Result {
	var res Result
	if len(samples) == 0 || sampleRate <= 0 {
		return res
	}

	var (
		prev    float32
		current *Segment
	)
	offset := func(i int) time.Duration {
		return time.Duration(i) * time.Second / time.Duration(sampleRate)
	}

	for start := 0; start < len(samples); start += d.windowSize {
		end := min(start+d.windowSize, len(samples))

		p := probability(samples[start:end])
		if res.TotalWindows > 0 {
			p = smoothing*p + (1-smoothing)*prev
		}
		prev = p

		res.TotalWindows++
		if p >= d.threshold {
			res.VoiceWindows++
			if current == nil {
				current = &Segment{Start: offset(start)}
			}
			current.End = offset(end)
		} else if current != nil {
			res.Segments = append(res.Segments, *current)
			current = nil
		}
	}
	if current != nil {
		res.Segments = append(res.Segments, *current)
	}

	res.VoiceRatio = float64(res.VoiceWindows) / float64(res.TotalWindows)

	d.mu.Lock()
	d.totalWindows += uint64(res.TotalWindows)
	d.voiceWindows += uint64(res.VoiceWindows)
	d.mu.Unlock()

	return res
}

// probability maps window RMS energy onto [0, 1]
func probability(window []float32) float32 {
	var energy float64
	for _, s := range window {
		energy += float64(s) * float64(s)
	}
	rms := math.Sqrt(energy / float64(len(window)))

	return float32(math.Min(rms/fullScaleRMS, 1))
}

// GetStats returns cumulative detector statistics
func (d *Detector) GetStats() DetectorStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	voicePercentage := float64(0)
	if d.totalWindows > 0 {
		voicePercentage = float64(d.voiceWindows) / float64(d.totalWindows) * 100
	}

	return DetectorStats{
		TotalWindows:    d.totalWindows,
		VoiceWindows:    d.voiceWindows,
		VoicePercentage: voicePercentage,
		Threshold:       d.threshold,
	}
}
