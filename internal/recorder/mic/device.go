// Package mic provides a microphone capture device backed by PortAudio.
package mic

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/recorder"
)

// Device captures mono float32 frames from the default input device
type Device struct{}

// NewDevice creates a PortAudio microphone device
func NewDevice() *Device {
	return &Device{}
}

// Open implements recorder.Device. If the default input device rejects the
// requested rate, the stream is reopened at the device's native rate.
func (d *Device) Open(ctx context.Context, requestedRate, frameSize int, onFrame func([]float32)) (recorder.Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}

	c := &capture{}
	c.connected.Store(true)

	callback := func(in []float32) {
		if c.connected.Load() {
			onFrame(in)
		}
	}

	rate := float64(requestedRate)
	stream, err := portaudio.OpenDefaultStream(1, 0, rate, frameSize, callback)
	if err != nil {
		info, infoErr := portaudio.DefaultInputDevice()
		if infoErr != nil {
			portaudio.Terminate()
			return nil, fmt.Errorf("no input device: %w", infoErr)
		}

		rate = info.DefaultSampleRate
		stream, err = portaudio.OpenDefaultStream(1, 0, rate, frameSize, callback)
		if err != nil {
			portaudio.Terminate()
			return nil, fmt.Errorf("open stream failed: %w", err)
		}
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start stream failed: %w", err)
	}

	c.stream = stream
	c.sampleRate = int(rate)
	if info := stream.Info(); info != nil && info.SampleRate > 0 {
		c.sampleRate = int(info.SampleRate)
	}

	return c, nil
}

type capture struct {
	stream     *portaudio.Stream
	sampleRate int
	connected  atomic.Bool
}

func (c *capture) SampleRate() int {
	return c.sampleRate
}

// Disconnect detaches the callback and halts the stream
func (c *capture) Disconnect() error {
	c.connected.Store(false)
	return c.stream.Stop()
}

func (c *capture) Close() error {
	return c.stream.Close()
}

// Stop releases the PortAudio library and with it the input device
func (c *capture) Stop() error {
	return portaudio.Terminate()
}
