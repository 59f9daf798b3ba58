// Package audio handles recording buffers, frame splitting, and format conversion.
// It accumulates captured float sample frames in order, converts them to 16-bit PCM,
// and encodes the result as a mono WAV container for speech upload.
package audio
