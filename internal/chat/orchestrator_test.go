package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/audio"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/backend"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/recorder"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/transcript"
)

type stubBackend struct {
	chat   *backend.ChatResult
	speech *backend.SpeechResult
	apiKey *backend.APIKeyResult
	upload *backend.UploadResult
	clear  *backend.ClearResult
	err    error

	mu    sync.Mutex
	calls []string
	args  []any
}

func (s *stubBackend) record(name string, arg any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	s.args = append(s.args, arg)
}

func (s *stubBackend) Chat(_ context.Context, message string, useResume bool) (*backend.ChatResult, error) {
	s.record("chat", []any{message, useResume})
	return s.chat, s.err
}

func (s *stubBackend) Speech(_ context.Context, wav []byte, useResume bool) (*backend.SpeechResult, error) {
	s.record("speech", []any{len(wav), useResume})
	return s.speech, s.err
}

func (s *stubBackend) SetAPIKey(_ context.Context, apiKey string) (*backend.APIKeyResult, error) {
	s.record("set_api", apiKey)
	return s.apiKey, s.err
}

func (s *stubBackend) UploadResume(_ context.Context, filename string, r io.Reader) (*backend.UploadResult, error) {
	data, _ := io.ReadAll(r)
	s.record("upload_resume", []any{filename, string(data)})
	return s.upload, s.err
}

func (s *stubBackend) ClearChat(_ context.Context) (*backend.ClearResult, error) {
	s.record("clear_chat", nil)
	return s.clear, s.err
}

type stubRecorder struct {
	recording bool
	startErr  error
	result    *recorder.Recording
}

func (r *stubRecorder) IsRecording() bool { return r.recording }

func (r *stubRecorder) Start(context.Context) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.recording = true
	return nil
}

func (r *stubRecorder) Stop() (*recorder.Recording, error) {
	if !r.recording {
		return nil, recorder.ErrNotRecording
	}
	r.recording = false
	return r.result, nil
}

type stubThemes struct{ saved []bool }

func (s *stubThemes) SaveTheme(dark bool) error {
	s.saved = append(s.saved, dark)
	return nil
}

type stubObserver struct {
	handled  []string
	rejected []string
}

func (s *stubObserver) IntentHandled(intent string) { s.handled = append(s.handled, intent) }
func (s *stubObserver) IntentRejected(intent, reason string) {
	s.rejected = append(s.rejected, intent+":"+reason)
}

func newOrchestrator(be *stubBackend, rec *stubRecorder, opts ...Option) *Orchestrator {
	if rec == nil {
		rec = &stubRecorder{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(NewSession("default", false), be, rec, logger, opts...)
}

func run(o *Orchestrator, intent Intent) []Instruction {
	var out []Instruction
	o.Handle(context.Background(), intent, func(i Instruction) { out = append(out, i) })
	return out
}

func user(text string) AppendMessage { return AppendMessage{Text: text, Sender: transcript.SenderUser} }
func bot(text string) AppendMessage  { return AppendMessage{Text: text, Sender: transcript.SenderBot} }

func TestSendMessage_EmptyIsIgnored(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		be := &stubBackend{}
		obs := &stubObserver{}
		o := newOrchestrator(be, nil, WithObserver(obs))

		require.Empty(t, run(o, SendMessage{Text: text}))
		require.Empty(t, be.calls, "no request for %q", text)
		require.Equal(t, []string{"send_message:empty_message"}, obs.rejected)
	}
}

func TestSendMessage_RendersReplyAfterUserMessage(t *testing.T) {
	be := &stubBackend{chat: &backend.ChatResult{Kind: backend.KindSuccess, Reply: "Hi"}}
	o := newOrchestrator(be, nil)
	o.Session().SetUseResume(true)

	out := run(o, SendMessage{Text: "  hello  "})

	require.Equal(t, []Instruction{user("hello"), bot("Hi")}, out)
	require.Equal(t, []any{[]any{"hello", true}}, be.args)
}

func TestSendMessage_KeyMissingFocusesKeyInput(t *testing.T) {
	be := &stubBackend{chat: &backend.ChatResult{Kind: backend.KindKeyMissing, Error: "invalid api key"}}
	o := newOrchestrator(be, nil)

	out := run(o, SendMessage{Text: "hello"})

	require.Len(t, out, 3)
	require.Equal(t, user("hello"), out[0])
	msg, ok := out[1].(AppendMessage)
	require.True(t, ok)
	require.Equal(t, transcript.SenderBot, msg.Sender)
	require.Contains(t, msg.Text, "https://huggingface.co/settings/tokens")
	require.Equal(t, FocusAPIKey{}, out[2])
}

func TestSendMessage_ServerAndNetworkErrors(t *testing.T) {
	be := &stubBackend{chat: &backend.ChatResult{Kind: backend.KindFailure, Error: "model overloaded"}}
	out := run(newOrchestrator(be, nil), SendMessage{Text: "q"})
	require.Equal(t, []Instruction{user("q"), bot("Error: model overloaded")}, out)

	be = &stubBackend{err: &backend.TransportError{Endpoint: backend.EndpointChat, Err: errors.New("connection refused")}}
	out = run(newOrchestrator(be, nil), SendMessage{Text: "q"})
	require.Equal(t, []Instruction{user("q"), bot("Network error: connection refused")}, out)

	be = &stubBackend{chat: &backend.ChatResult{Kind: backend.KindEmpty}}
	out = run(newOrchestrator(be, nil), SendMessage{Text: "q"})
	require.Equal(t, []Instruction{user("q")}, out)
}

func TestToggleRecording_StartAndStopTranscribes(t *testing.T) {
	wav := audio.EncodeWAV(make([]float32, 160), 16000)
	rec := &stubRecorder{result: &recorder.Recording{WAV: wav, SampleRate: 16000, NumSamples: 160}}
	be := &stubBackend{speech: &backend.SpeechResult{Kind: backend.KindSuccess, Transcript: "I am a backend engineer"}}
	o := newOrchestrator(be, rec)

	require.Equal(t, []Instruction{SetRecording{Active: true}}, run(o, ToggleRecording{}))
	require.True(t, rec.IsRecording())
	require.Empty(t, be.calls)

	out := run(o, ToggleRecording{})
	require.Equal(t, []Instruction{SetRecording{Active: false}, SetInput{Text: "I am a backend engineer"}}, out)
	require.Equal(t, []string{"speech"}, be.calls)
	require.Equal(t, []any{[]any{len(wav), false}}, be.args)
}

func TestToggleRecording_SilentRecordingStillUploads(t *testing.T) {
	wav := audio.EncodeWAV(make([]float32, 160), 16000)
	rec := &stubRecorder{recording: true, result: &recorder.Recording{WAV: wav, SampleRate: 16000, NumSamples: 160}}
	be := &stubBackend{speech: &backend.SpeechResult{Kind: backend.KindSuccess, Transcript: "hmm"}}

	var logs bytes.Buffer
	o := NewOrchestrator(NewSession("default", false), be, rec, slog.New(slog.NewTextHandler(&logs, nil)))

	out := run(o, ToggleRecording{})
	require.Equal(t, []Instruction{SetRecording{Active: false}, SetInput{Text: "hmm"}}, out)
	require.Equal(t, []string{"speech"}, be.calls)
	require.Contains(t, logs.String(), "No voice detected in recording")
}

func TestToggleRecording_ConcurrentStartIsIgnored(t *testing.T) {
	rec := &stubRecorder{startErr: recorder.ErrAlreadyRecording}
	be := &stubBackend{}

	out := run(newOrchestrator(be, rec), ToggleRecording{})
	require.Empty(t, out)
	require.Empty(t, be.calls)
}

func TestToggleRecording_MicrophoneError(t *testing.T) {
	rec := &stubRecorder{startErr: recorder.ErrMicrophoneUnavailable}
	be := &stubBackend{}

	out := run(newOrchestrator(be, rec), ToggleRecording{})
	require.Equal(t, []Instruction{bot("Microphone error: microphone unavailable")}, out)
	require.Empty(t, be.calls)
}

func TestStopRecording_Variants(t *testing.T) {
	cases := []struct {
		name string
		res  *backend.SpeechResult
		err  error
		want []Instruction
	}{
		{
			name: "server error",
			res:  &backend.SpeechResult{Kind: backend.KindFailure, Error: "Could not process audio"},
			want: []Instruction{SetRecording{}, bot("Error: Could not process audio")},
		},
		{
			name: "key missing",
			res:  &backend.SpeechResult{Kind: backend.KindKeyMissing, Error: "api key"},
			want: []Instruction{SetRecording{}, bot(KeyGuidance), FocusAPIKey{}},
		},
		{
			name: "empty transcript",
			res:  &backend.SpeechResult{Kind: backend.KindEmpty},
			want: []Instruction{SetRecording{}},
		},
		{
			name: "network",
			err:  &backend.TransportError{Endpoint: backend.EndpointSpeech, Err: errors.New("EOF")},
			want: []Instruction{SetRecording{}, bot("Speech processing error: EOF")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &stubRecorder{recording: true, result: &recorder.Recording{WAV: audio.EncodeWAV(nil, 16000)}}
			be := &stubBackend{speech: tc.res, err: tc.err}

			require.Equal(t, tc.want, run(newOrchestrator(be, rec), StopRecording{}))
		})
	}
}

func TestStopRecording_IdleIsNoop(t *testing.T) {
	be := &stubBackend{}
	obs := &stubObserver{}
	out := run(newOrchestrator(be, nil, WithObserver(obs)), StopRecording{})

	require.Empty(t, out)
	require.Empty(t, be.calls)
	require.Equal(t, []string{"stop_recording:not_recording"}, obs.rejected)
}

func TestSaveAPIKey(t *testing.T) {
	be := &stubBackend{}
	require.Equal(t, []Instruction{SetAPIStatus{Text: StatusEnterAPIKey}}, run(newOrchestrator(be, nil), SaveAPIKey{Key: "  "}))
	require.Empty(t, be.calls)

	be = &stubBackend{apiKey: &backend.APIKeyResult{Saved: true}}
	out := run(newOrchestrator(be, nil), SaveAPIKey{Key: " hf_token "})
	require.Equal(t, []Instruction{SetAPIStatus{Text: StatusAPIKeySaved}, ClearAPIKeyInput{}}, out)
	require.Equal(t, []any{"hf_token"}, be.args)

	be = &stubBackend{apiKey: &backend.APIKeyResult{Saved: false, Error: "API key is required"}}
	out = run(newOrchestrator(be, nil), SaveAPIKey{Key: "x"})
	require.Equal(t, []Instruction{SetAPIStatus{Text: StatusAPIKeyFailed}}, out)

	be = &stubBackend{err: &backend.TransportError{Endpoint: backend.EndpointSetAPI, Err: errors.New("timeout")}}
	out = run(newOrchestrator(be, nil), SaveAPIKey{Key: "x"})
	require.Equal(t, []Instruction{SetAPIStatus{Text: "Error: timeout"}}, out)
}

func TestUploadResume_RejectsNonPDF(t *testing.T) {
	be := &stubBackend{}
	opened := false
	o := newOrchestrator(be, nil, WithFileOpener(func(string) (io.ReadCloser, error) {
		opened = true
		return io.NopCloser(strings.NewReader("")), nil
	}))

	out := run(o, UploadResume{Path: "resume.txt"})
	require.Equal(t, []Instruction{SetUploadStatus{Text: StatusSelectPDF}}, out)
	require.Empty(t, be.calls)
	require.False(t, opened)

	require.Empty(t, run(o, UploadResume{Path: ""}))
	require.Empty(t, be.calls)
}

func TestUploadResume_Variants(t *testing.T) {
	opener := WithFileOpener(func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("%PDF-1.7")), nil
	})

	be := &stubBackend{upload: &backend.UploadResult{Uploaded: true}}
	out := run(newOrchestrator(be, nil, opener), UploadResume{Path: "/tmp/cv.pdf"})
	require.Equal(t, []Instruction{SetUploadStatus{Text: StatusUploading}, SetUploadStatus{Text: StatusUploaded}}, out)
	require.Equal(t, []any{[]any{"/tmp/cv.pdf", "%PDF-1.7"}}, be.args)

	be = &stubBackend{upload: &backend.UploadResult{Message: "Failed to process resume"}}
	out = run(newOrchestrator(be, nil, opener), UploadResume{Path: "cv.pdf"})
	require.Equal(t, []Instruction{SetUploadStatus{Text: StatusUploading}, SetUploadStatus{Text: "Failed to process resume"}}, out)

	be = &stubBackend{err: &backend.TransportError{Endpoint: backend.EndpointUploadResume, Err: errors.New("reset")}}
	out = run(newOrchestrator(be, nil, opener), UploadResume{Path: "cv.pdf"})
	require.Equal(t, []Instruction{SetUploadStatus{Text: StatusUploading}, SetUploadStatus{Text: StatusUploadFailure}}, out)

	be = &stubBackend{}
	failing := WithFileOpener(func(string) (io.ReadCloser, error) { return nil, errors.New("no such file") })
	out = run(newOrchestrator(be, nil, failing), UploadResume{Path: "missing.pdf"})
	require.Equal(t, []Instruction{SetUploadStatus{Text: StatusUploading}, SetUploadStatus{Text: StatusUploadFailure}}, out)
	require.Empty(t, be.calls)
}

func TestClearChatAndNewChatShareBehavior(t *testing.T) {
	for _, intent := range []Intent{ClearChat{}, NewChat{}} {
		be := &stubBackend{clear: &backend.ClearResult{Cleared: true}}
		require.Equal(t, []Instruction{ResetTranscript{}}, run(newOrchestrator(be, nil), intent))
		require.Equal(t, []string{"clear_chat"}, be.calls)

		be = &stubBackend{clear: &backend.ClearResult{Cleared: false}}
		require.Empty(t, run(newOrchestrator(be, nil), intent))

		be = &stubBackend{err: &backend.TransportError{Endpoint: backend.EndpointClearChat, Err: errors.New("refused")}}
		require.Equal(t, []Instruction{bot("Error clearing chat: refused")}, run(newOrchestrator(be, nil), intent))
	}
}

func TestToggleThemePersists(t *testing.T) {
	themes := &stubThemes{}
	o := newOrchestrator(&stubBackend{}, nil, WithThemeStore(themes))

	require.Equal(t, []Instruction{SetTheme{Dark: false}}, run(o, ToggleTheme{}))
	require.Equal(t, []Instruction{SetTheme{Dark: true}}, run(o, ToggleTheme{}))
	require.Equal(t, []bool{false, true}, themes.saved)
}

func TestSetInterviewMode(t *testing.T) {
	o := newOrchestrator(&stubBackend{}, nil)

	require.Equal(t, []Instruction{SetMode{UseResume: true}}, run(o, SetInterviewMode{UseResume: true}))
	require.True(t, o.Session().UseResume())
}
