// Package recorder implements microphone capture sessions.
// A Recorder opens a capture Device, buffers fixed-size sample frames in order,
// and on stop tears the pipeline down and encodes the samples as a WAV payload.
package recorder
