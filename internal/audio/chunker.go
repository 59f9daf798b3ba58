package audio

import "math"

// DefaultFrameSize is the number of samples delivered per capture callback
const DefaultFrameSize = 4096

// SplitFrames slices samples into consecutive frames of frameSize samples.
// The last frame is shorter when len(samples) is not a multiple of frameSize.
// Frames share memory with samples.
func SplitFrames(samples []float32, frameSize int) [][]float32 {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	if len(samples) == 0 {
		return nil
	}

	frames := make([][]float32, 0, (len(samples)+frameSize-1)/frameSize)
	for start := 0; start < len(samples); start += frameSize {
		end := start + frameSize
		if end > len(samples) {
			end = len(samples)
		}
		frames = append(frames, samples[start:end:end])
	}

	return frames
}

// IntToFloat normalizes integer PCM samples of the given bit depth to [-1, 1)
func IntToFloat(samples []int, bitDepth int) []float32 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := math.Pow(2, float64(bitDepth-1))

	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) / scale)
	}
	return out
}

// Downmix averages interleaved multi-channel samples into a mono sequence
func Downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}

	out := make([]float32, len(samples)/channels)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
