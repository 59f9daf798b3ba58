package chat

import "github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/transcript"

// Intent is a discrete user action produced by the UI
type Intent interface {
	intentName() string
}

// SendMessage sends typed or transcribed text to the coach
type SendMessage struct{ Text string }

// ToggleRecording starts recording when idle and stops and transcribes otherwise
type ToggleRecording struct{}

// StopRecording stops and transcribes an active recording; no-op when idle
type StopRecording struct{}

// SaveAPIKey stores the HuggingFace token on the backend
type SaveAPIKey struct{ Key string }

// UploadResume uploads the PDF at Path
type UploadResume struct{ Path string }

// ClearChat resets the conversation
type ClearChat struct{}

// NewChat starts a new conversation; same effect as ClearChat
type NewChat struct{}

// ToggleTheme switches between dark and light themes
type ToggleTheme struct{}

// SetInterviewMode selects whether answers are grounded on the uploaded resume
type SetInterviewMode struct{ UseResume bool }

func (SendMessage) intentName() string      { return "send_message" }
func (ToggleRecording) intentName() string  { return "toggle_recording" }
func (StopRecording) intentName() string    { return "stop_recording" }
func (SaveAPIKey) intentName() string       { return "save_api_key" }
func (UploadResume) intentName() string     { return "upload_resume" }
func (ClearChat) intentName() string        { return "clear_chat" }
func (NewChat) intentName() string          { return "new_chat" }
func (ToggleTheme) intentName() string      { return "toggle_theme" }
func (SetInterviewMode) intentName() string { return "set_interview_mode" }

// IntentName returns a stable identifier for logs and metrics
func IntentName(i Intent) string {
	return i.intentName()
}

// Instruction tells the view how to update after an intent
type Instruction interface {
	instruction()
}

// AppendMessage adds a message to the transcript
type AppendMessage struct {
	Text   string
	Sender transcript.Sender
}

// SetInput replaces the message input with Text for review before sending
type SetInput struct{ Text string }

// FocusAPIKey moves input focus to the API key field
type FocusAPIKey struct{}

// SetAPIStatus updates the API key status line
type SetAPIStatus struct{ Text string }

// ClearAPIKeyInput empties the API key field
type ClearAPIKeyInput struct{}

// SetUploadStatus updates the resume upload status line
type SetUploadStatus struct{ Text string }

// ResetTranscript clears the transcript and shows the welcome placeholder
type ResetTranscript struct{}

// SetRecording toggles the recording indicator
type SetRecording struct{ Active bool }

// SetTheme applies a theme
type SetTheme struct{ Dark bool }

// SetMode shows the selected interview mode
type SetMode struct{ UseResume bool }

func (AppendMessage) instruction()    {}
func (SetInput) instruction()         {}
func (FocusAPIKey) instruction()      {}
func (SetAPIStatus) instruction()     {}
func (ClearAPIKeyInput) instruction() {}
func (SetUploadStatus) instruction()  {}
func (ResetTranscript) instruction()  {}
func (SetRecording) instruction()     {}
func (SetTheme) instruction()         {}
func (SetMode) instruction()          {}

// Emitter receives instructions in the order they must be applied
type Emitter func(Instruction)
