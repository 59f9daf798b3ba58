// Package vad estimates voice activity in recorded audio.
// It uses a window RMS energy detector with light smoothing and reports
// how much of a recording contains speech and where the speech segments are.
package vad
