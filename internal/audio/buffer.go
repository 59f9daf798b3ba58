package audio

import (
	"sync"
	"time"
)

// Buffer accumulates captured sample frames for one recording session.
// Frames are kept in capture order and merged once when recording stops.
type Buffer struct {
	sampleRate int

	chunks      [][]float32
	totalLength int

	mu sync.RWMutex
}

// NewBuffer creates an empty buffer for samples captured at sampleRate
func NewBuffer(sampleRate int) *Buffer {
	return &Buffer{
		sampleRate: sampleRate,
		chunks:     make([][]float32, 0, 64),
	}
}

// Append copies frame into the buffer. The caller may reuse frame afterwards,
// which is what audio callbacks do with their input slice.
func (b *Buffer) Append(frame []float32) {
	if len(frame) == 0 {
		return
	}

	chunk := make([]float32, len(frame))
	copy(chunk, frame)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = append(b.chunks, chunk)
	b.totalLength += len(chunk)
}

// Merge concatenates all buffered frames in capture order
func (b *Buffer) Merge() []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]float32, b.totalLength)
	offset := 0
	for _, chunk := range b.chunks {
		copy(result[offset:], chunk)
		offset += len(chunk)
	}

	return result
}

// Len returns the total number of buffered samples
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalLength
}

// ChunkCount returns the number of buffered frames
func (b *Buffer) ChunkCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chunks)
}

// SampleRate returns the rate the samples were captured at
func (b *Buffer) SampleRate() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sampleRate
}

// SetSampleRate records the rate the capture device actually runs at
func (b *Buffer) SetSampleRate(sampleRate int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sampleRate = sampleRate
}

// Duration returns the audio duration represented by the buffered samples
func (b *Buffer) Duration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(b.totalLength) * time.Second / time.Duration(b.sampleRate)
}
