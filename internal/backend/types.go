package backend

import (
	"fmt"
	"regexp"
)

// ResultKind discriminates the variants a backend reply can take
type ResultKind int

const (
	// KindEmpty means the reply carried nothing the client acts on
	KindEmpty ResultKind = iota
	// KindSuccess carries the endpoint's success payload
	KindSuccess
	// KindKeyMissing is a server error about a missing or invalid API key
	KindKeyMissing
	// KindFailure is any other server-reported error
	KindFailure
)

func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindKeyMissing:
		return "key_missing"
	case KindFailure:
		return "failure"
	default:
		return "empty"
	}
}

// apiKeyPattern matches server errors that are about the API key
var apiKeyPattern = regexp.MustCompile(`(?i)api key`)

// IsAPIKeyError reports whether a server error message concerns the API key
func IsAPIKeyError(msg string) bool {
	return apiKeyPattern.MatchString(msg)
}

// ChatResult is the parsed reply of /chat
type ChatResult struct {
	Kind  ResultKind
	Reply string
	Error string
}

// SpeechResult is the parsed reply of /speech
type SpeechResult struct {
	Kind       ResultKind
	Transcript string
	Error      string
}

// APIKeyResult is the parsed reply of /set_api
type APIKeyResult struct {
	Saved   bool
	Message string
	Error   string
}

// UploadResult is the parsed reply of /upload_resume
type UploadResult struct {
	Uploaded bool
	Filename string
	// Message is the server's explanation when the upload was rejected
	Message string
}

// ClearResult is the parsed reply of /clear_chat
type ClearResult struct {
	Cleared bool
}

// TransportError reports a request that never produced a decodable reply:
// connection failures, cancelled contexts, and non-JSON bodies.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Request bodies

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UseResume bool   `json:"use_resume"`
}

type setAPIRequest struct {
	APIKey string `json:"api_key"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

// Response bodies

type chatResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (r chatResponse) result() *ChatResult {
	switch {
	case r.Error != "" && IsAPIKeyError(r.Error):
		return &ChatResult{Kind: KindKeyMissing, Error: r.Error}
	case r.Response != "":
		return &ChatResult{Kind: KindSuccess, Reply: r.Response}
	case r.Error != "":
		return &ChatResult{Kind: KindFailure, Error: r.Error}
	default:
		return &ChatResult{Kind: KindEmpty}
	}
}

type speechResponse struct {
	Result string `json:"result"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func (r speechResponse) result() *SpeechResult {
	switch {
	case r.Error != "" && IsAPIKeyError(r.Error):
		return &SpeechResult{Kind: KindKeyMissing, Error: r.Error}
	case r.Error != "":
		return &SpeechResult{Kind: KindFailure, Error: r.Error}
	}

	text := r.Result
	if text == "" {
		text = r.Text
	}
	if text == "" {
		return &SpeechResult{Kind: KindEmpty}
	}
	return &SpeechResult{Kind: KindSuccess, Transcript: text}
}

type statusResponse struct {
	Status   string `json:"status"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Error    string `json:"error"`
	Filename string `json:"filename"`
}

func (r statusResponse) uploadResult() *UploadResult {
	if r.Status == "success" || r.Success {
		return &UploadResult{Uploaded: true, Filename: r.Filename, Message: r.Message}
	}

	msg := r.Error
	if msg == "" {
		msg = r.Message
	}
	if msg == "" {
		msg = "Upload failed"
	}
	return &UploadResult{Uploaded: false, Message: msg}
}
