package recorder

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-audio/wav"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/audio"
)

// FileDevice replays a WAV file as if it were a microphone. The file's own
// sample rate substitutes the requested one, the way a sound card running at
// its native rate would.
type FileDevice struct {
	Path string
	// Realtime paces frame delivery at the file's sample rate. Otherwise the
	// whole file is delivered before Open returns.
	Realtime bool
}

// NewFileDevice creates a device replaying the WAV file at path
func NewFileDevice(path string, realtime bool) *FileDevice {
	return &FileDevice{Path: path, Realtime: realtime}
}

// Open implements Device
func (d *FileDevice) Open(ctx context.Context, requestedRate, frameSize int, onFrame func([]float32)) (Capture, error) {
	samples, rate, err := readWAVFile(d.Path)
	if err != nil {
		return nil, err
	}

	c := &fileCapture{
		sampleRate: rate,
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}

	var interval time.Duration
	if d.Realtime && rate > 0 {
		interval = time.Duration(frameSize) * time.Second / time.Duration(rate)
	}

	frames := audio.SplitFrames(samples, frameSize)
	if interval == 0 {
		for _, frame := range frames {
			onFrame(frame)
		}
		close(c.exited)
		return c, nil
	}

	go c.run(ctx, frames, interval, onFrame)

	return c, nil
}

// readWAVFile decodes a PCM WAV file into mono float samples
func readWAVFile(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open audio file %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode audio file %s: %w", path, err)
	}

	channels := int(dec.NumChans)
	samples := audio.IntToFloat(buf.Data, int(dec.BitDepth))

	return audio.Downmix(samples, channels), int(dec.SampleRate), nil
}

type fileCapture struct {
	sampleRate int

	done   chan struct{}
	exited chan struct{}
	once   sync.Once
	closed bool
	mu     sync.Mutex
}

func (c *fileCapture) run(ctx context.Context, frames [][]float32, interval time.Duration, onFrame func([]float32)) {
	defer close(c.exited)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for _, frame := range frames {
		select {
		case <-ticker.C:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
		onFrame(frame)
	}
}

func (c *fileCapture) SampleRate() int {
	return c.sampleRate
}

// Disconnect stops frame delivery and waits for the replay goroutine
func (c *fileCapture) Disconnect() error {
	c.once.Do(func() { close(c.done) })
	<-c.exited
	return nil
}

func (c *fileCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("capture already closed")
	}
	c.closed = true
	return nil
}

func (c *fileCapture) Stop() error {
	return nil
}
