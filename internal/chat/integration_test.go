package chat_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/audio"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/backend"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/chat"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/mockbackend"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/recorder"
	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/transcript"
)

type harness struct {
	orch *chat.Orchestrator
	mock *mockbackend.Server
}

func newHarness(t *testing.T, opts mockbackend.Options, device recorder.Device) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock := mockbackend.New(opts, logger)
	ts := httptest.NewServer(mock.Handler())
	t.Cleanup(ts.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: ts.URL}, logger)
	require.NoError(t, err)

	rec := recorder.New(device, recorder.Config{}, logger)
	orch := chat.NewOrchestrator(chat.NewSession(backend.DefaultSessionID, false), client, rec, logger)
	return &harness{orch: orch, mock: mock}
}

func (h *harness) run(intent chat.Intent) []chat.Instruction {
	var out []chat.Instruction
	h.orch.Handle(context.Background(), intent, func(i chat.Instruction) { out = append(out, i) })
	return out
}

func writeWAV(t *testing.T, samples int, rate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answer.wav")
	require.NoError(t, os.WriteFile(path, audio.EncodeWAV(make([]float32, samples), rate), 0644))
	return path
}

func TestIntegrationKeyFlow(t *testing.T) {
	h := newHarness(t, mockbackend.Options{RequireAPIKey: true}, recorder.NewFileDevice(writeWAV(t, 160, 16000), false))

	out := h.run(chat.SendMessage{Text: "hello"})
	require.Len(t, out, 3)
	require.Equal(t, chat.AppendMessage{Text: "hello", Sender: transcript.SenderUser}, out[0])
	require.Equal(t, chat.AppendMessage{Text: chat.KeyGuidance, Sender: transcript.SenderBot}, out[1])
	require.Equal(t, chat.FocusAPIKey{}, out[2])

	out = h.run(chat.SaveAPIKey{Key: "hf_token"})
	require.Equal(t, []chat.Instruction{chat.SetAPIStatus{Text: chat.StatusAPIKeySaved}, chat.ClearAPIKeyInput{}}, out)

	out = h.run(chat.SendMessage{Text: "hello"})
	require.Len(t, out, 2)
	reply := out[1].(chat.AppendMessage)
	require.Equal(t, transcript.SenderBot, reply.Sender)
	require.Contains(t, reply.Text, "Next general question")

	require.Equal(t, []chat.Instruction{chat.ResetTranscript{}}, h.run(chat.NewChat{}))
	require.Empty(t, h.mock.History(backend.DefaultSessionID))
}

func TestIntegrationRecordingRoundTrip(t *testing.T) {
	h := newHarness(t, mockbackend.Options{}, recorder.NewFileDevice(writeWAV(t, 24000, 48000), false))

	require.Equal(t, []chat.Instruction{chat.SetRecording{Active: true}}, h.run(chat.ToggleRecording{}))

	out := h.run(chat.StopRecording{})
	require.Len(t, out, 2)
	require.Equal(t, chat.SetRecording{Active: false}, out[0])
	draft, ok := out[1].(chat.SetInput)
	require.True(t, ok, "expected a draft, got %#v", out[1])
	require.True(t, strings.HasPrefix(draft.Text, "transcribed "), draft.Text)
}

func TestIntegrationResumeUpload(t *testing.T) {
	h := newHarness(t, mockbackend.Options{}, recorder.NewFileDevice(writeWAV(t, 160, 16000), false))

	dir := t.TempDir()
	pdf := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.5\n..."), 0644))
	txt := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(txt, []byte("plain"), 0644))

	require.Equal(t, []chat.Instruction{chat.SetUploadStatus{Text: chat.StatusSelectPDF}}, h.run(chat.UploadResume{Path: txt}))
	require.Empty(t, h.mock.Resume(backend.DefaultSessionID))

	out := h.run(chat.UploadResume{Path: pdf})
	require.Equal(t, []chat.Instruction{
		chat.SetUploadStatus{Text: chat.StatusUploading},
		chat.SetUploadStatus{Text: chat.StatusUploaded},
	}, out)
	require.Equal(t, "resume.pdf", h.mock.Resume(backend.DefaultSessionID))

	h.run(chat.SetInterviewMode{UseResume: true})
	h.run(chat.SendMessage{Text: "ask me"})
	history := h.mock.History(backend.DefaultSessionID)
	require.Len(t, history, 1)
	require.True(t, history[0].UseResume)
}

func TestIntegrationBackendDown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(mockbackend.New(mockbackend.Options{}, logger).Handler())
	url := ts.URL
	ts.Close()

	client, err := backend.NewClient(backend.Config{BaseURL: url}, logger)
	require.NoError(t, err)
	orch := chat.NewOrchestrator(chat.NewSession(backend.DefaultSessionID, false), client,
		recorder.New(recorder.NewFileDevice("missing.wav", false), recorder.Config{}, logger), logger)

	var out []chat.Instruction
	orch.Handle(context.Background(), chat.SendMessage{Text: "hi"}, func(i chat.Instruction) { out = append(out, i) })

	require.Len(t, out, 2)
	msg := out[1].(chat.AppendMessage)
	require.True(t, strings.HasPrefix(msg.Text, "Network error: "), msg.Text)

	out = nil
	orch.Handle(context.Background(), chat.ToggleRecording{}, func(i chat.Instruction) { out = append(out, i) })
	require.Len(t, out, 1)
	require.True(t, strings.HasPrefix(out[0].(chat.AppendMessage).Text, "Microphone error: "))
}
