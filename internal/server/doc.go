// Package server implements the optional local status server of the client.
// It reports health, backend call statistics, the current transcript and
// Prometheus metrics while the terminal client runs.
package server
