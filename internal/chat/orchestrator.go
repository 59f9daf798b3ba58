package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/backend"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/recorder"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/transcript"
)

// KeyGuidance is shown when the backend reports a missing or invalid API key
const KeyGuidance = "Please provide your HuggingFace API key. Get one at https://huggingface.co/settings/tokens"

// Status lines
const (
	StatusEnterAPIKey   = "Please enter an API key"
	StatusAPIKeySaved   = "API key saved successfully"
	StatusAPIKeyFailed  = "Failed to save API key"
	StatusSelectPDF     = "Please select a PDF file"
	StatusUploading     = "Uploading..."
	StatusUploaded      = "Resume uploaded & processed"
	StatusUploadFailure = "Error: Failed to upload"
)

// Backend is the subset of the backend client the orchestrator calls
type Backend interface {
	Chat(ctx context.Context, message string, useResume bool) (*backend.ChatResult, error)
	Speech(ctx context.Context, wav []byte, useResume bool) (*backend.SpeechResult, error)
	SetAPIKey(ctx context.Context, apiKey string) (*backend.APIKeyResult, error)
	UploadResume(ctx context.Context, filename string, r io.Reader) (*backend.UploadResult, error)
	ClearChat(ctx context.Context) (*backend.ClearResult, error)
}

// Recorder captures microphone audio
type Recorder interface {
	IsRecording() bool
	Start(ctx context.Context) error
	Stop() (*recorder.Recording, error)
}

// ThemeStore persists the theme preference
type ThemeStore interface {
	SaveTheme(dark bool) error
}

// Observer is notified about handled intents, typically to record metrics
type Observer interface {
	IntentHandled(intent string)
	IntentRejected(intent, reason string)
}

// Orchestrator turns intents into backend calls and render instructions
type Orchestrator struct {
	session  *Session
	backend  Backend
	recorder Recorder
	themes   ThemeStore
	observer Observer
	logger   *slog.Logger

	openFile func(path string) (io.ReadCloser, error)
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithThemeStore persists theme changes to store
func WithThemeStore(store ThemeStore) Option {
	return func(o *Orchestrator) { o.themes = store }
}

// WithObserver registers an intent observer
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithFileOpener replaces os.Open for resume uploads
func WithFileOpener(open func(path string) (io.ReadCloser, error)) Option {
	return func(o *Orchestrator) { o.openFile = open }
}

// NewOrchestrator wires the orchestration layer
func NewOrchestrator(session *Session, be Backend, rec Recorder, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	o := &Orchestrator{
		session:  session,
		backend:  be,
		recorder: rec,
		logger:   logger.With(slog.String("component", "orchestrator")),
		openFile: func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns the state object the orchestrator operates on
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Handle processes one intent and emits the resulting instructions in order.
// It blocks for the duration of any backend call the intent triggers.
func (o *Orchestrator) Handle(ctx context.Context, intent Intent, emit Emitter) {
	name := IntentName(intent)
	o.logger.Debug("Handling intent", slog.String("intent", name))

	var rejected string
	switch in := intent.(type) {
	case SendMessage:
		rejected = o.sendMessage(ctx, in.Text, emit)
	case ToggleRecording:
		if o.recorder.IsRecording() {
			o.stopRecording(ctx, emit)
		} else {
			o.startRecording(ctx, emit)
		}
	case StopRecording:
		if !o.recorder.IsRecording() {
			rejected = "not_recording"
			break
		}
		o.stopRecording(ctx, emit)
	case SaveAPIKey:
		rejected = o.saveAPIKey(ctx, in.Key, emit)
	case UploadResume:
		rejected = o.uploadResume(ctx, in.Path, emit)
	case ClearChat, NewChat:
		o.clearChat(ctx, emit)
	case ToggleTheme:
		o.toggleTheme(emit)
	case SetInterviewMode:
		o.session.SetUseResume(in.UseResume)
		emit(SetMode{UseResume: in.UseResume})
	default:
		rejected = "unknown_intent"
	}

	if o.observer == nil {
		return
	}
	if rejected != "" {
		o.observer.IntentRejected(name, rejected)
	} else {
		o.observer.IntentHandled(name)
	}
}

func (o *Orchestrator) sendMessage(ctx context.Context, text string, emit Emitter) string {
	message := strings.TrimSpace(text)
	if message == "" {
		return "empty_message"
	}

	emit(AppendMessage{Text: message, Sender: transcript.SenderUser})

	res, err := o.backend.Chat(ctx, message, o.session.UseResume())
	if err != nil {
		emit(botMessage("Network error: " + transportMessage(err)))
		return ""
	}

	switch res.Kind {
	case backend.KindKeyMissing:
		o.emitKeyGuidance(emit)
	case backend.KindSuccess:
		emit(botMessage(res.Reply))
	case backend.KindFailure:
		emit(botMessage("Error: " + res.Error))
	}
	return ""
}

func (o *Orchestrator) startRecording(ctx context.Context, emit Emitter) {
	if err := o.recorder.Start(ctx); err != nil {
		// A concurrent toggle started it first
		if errors.Is(err, recorder.ErrAlreadyRecording) {
			return
		}
		o.logger.Warn("Failed to start recording", slog.String("error", err.Error()))
		emit(botMessage("Microphone error: " + err.Error()))
		return
	}
	emit(SetRecording{Active: true})
}

func (o *Orchestrator) stopRecording(ctx context.Context, emit Emitter) {
	rec, err := o.recorder.Stop()
	if err != nil {
		// Another intent stopped it first
		if errors.Is(err, recorder.ErrNotRecording) {
			return
		}
		emit(SetRecording{Active: false})
		emit(botMessage("Microphone error: " + err.Error()))
		return
	}
	emit(SetRecording{Active: false})

	o.logger.Info("Uploading recording",
		slog.Int("samples", rec.NumSamples),
		slog.Int("sample_rate", rec.SampleRate),
		slog.Duration("duration", rec.Duration),
		slog.Float64("voice_ratio", rec.Voice.VoiceRatio),
	)
	if rec.NumSamples > 0 && !rec.Voice.HasVoice() {
		o.logger.Warn("No voice detected in recording", slog.Duration("duration", rec.Duration))
	}

	res, err := o.backend.Speech(ctx, rec.WAV, o.session.UseResume())
	if err != nil {
		emit(botMessage("Speech processing error: " + transportMessage(err)))
		return
	}

	switch res.Kind {
	case backend.KindKeyMissing:
		o.emitKeyGuidance(emit)
	case backend.KindFailure:
		emit(botMessage("Error: " + res.Error))
	case backend.KindSuccess:
		emit(SetInput{Text: res.Transcript})
	}
}

func (o *Orchestrator) saveAPIKey(ctx context.Context, key string, emit Emitter) string {
	apiKey := strings.TrimSpace(key)
	if apiKey == "" {
		emit(SetAPIStatus{Text: StatusEnterAPIKey})
		return "empty_api_key"
	}

	res, err := o.backend.SetAPIKey(ctx, apiKey)
	if err != nil {
		emit(SetAPIStatus{Text: "Error: " + transportMessage(err)})
		return ""
	}

	if res.Saved {
		emit(SetAPIStatus{Text: StatusAPIKeySaved})
		emit(ClearAPIKeyInput{})
	} else {
		emit(SetAPIStatus{Text: StatusAPIKeyFailed})
	}
	return ""
}

func (o *Orchestrator) uploadResume(ctx context.Context, path string, emit Emitter) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "no_file"
	}
	if !strings.HasSuffix(filepath.Base(path), ".pdf") {
		emit(SetUploadStatus{Text: StatusSelectPDF})
		return "not_pdf"
	}

	emit(SetUploadStatus{Text: StatusUploading})

	f, err := o.openFile(path)
	if err != nil {
		o.logger.Warn("Failed to open resume", slog.String("path", path), slog.String("error", err.Error()))
		emit(SetUploadStatus{Text: StatusUploadFailure})
		return ""
	}
	defer f.Close()

	res, err := o.backend.UploadResume(ctx, path, f)
	if err != nil {
		emit(SetUploadStatus{Text: StatusUploadFailure})
		return ""
	}

	if res.Uploaded {
		emit(SetUploadStatus{Text: StatusUploaded})
	} else {
		emit(SetUploadStatus{Text: res.Message})
	}
	return ""
}

func (o *Orchestrator) clearChat(ctx context.Context, emit Emitter) {
	res, err := o.backend.ClearChat(ctx)
	if err != nil {
		emit(botMessage("Error clearing chat: " + transportMessage(err)))
		return
	}

	if res.Cleared {
		emit(ResetTranscript{})
	}
}

func (o *Orchestrator) toggleTheme(emit Emitter) {
	dark := o.session.ToggleTheme()
	emit(SetTheme{Dark: dark})

	if o.themes == nil {
		return
	}
	if err := o.themes.SaveTheme(dark); err != nil {
		o.logger.Warn("Failed to persist theme", slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) emitKeyGuidance(emit Emitter) {
	emit(botMessage(KeyGuidance))
	emit(FocusAPIKey{})
}

func botMessage(text string) AppendMessage {
	return AppendMessage{Text: text, Sender: transcript.SenderBot}
}

// transportMessage strips the endpoint prefix from transport errors
func transportMessage(err error) string {
	var te *backend.TransportError
	if errors.As(err, &te) && te.Err != nil {
		return te.Err.Error()
	}
	return err.Error()
}
