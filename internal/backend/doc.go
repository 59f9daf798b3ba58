// Package backend implements the HTTP client for the InterviewIQ backend.
// It sends JSON and multipart requests to the chat, speech, API key, resume and
// clear endpoints, and parses every reply into an explicit per-endpoint result type.
package backend
