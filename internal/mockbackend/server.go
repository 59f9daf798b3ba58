// Package mockbackend is an in-process stand-in for the InterviewIQ backend.
// It serves the same five endpoints with canned behavior so the client can be
// developed and tested without the Python service or a HuggingFace token.
package mockbackend

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/audio"
)

// maxUploadSize mirrors the backend's request size limit
const maxUploadSize = 16 << 20

// Turn is one exchange stored in a session history
type Turn struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	UseResume bool   `json:"use_resume"`
}

// ReplyFunc produces the coach reply for a chat message
type ReplyFunc func(message string, useResume bool, history []Turn) (string, error)

// TranscribeFunc turns an uploaded recording into text
type TranscribeFunc func(info *audio.WAVInfo, wav []byte) (string, error)

// Options customizes the mock
type Options struct {
	Reply      ReplyFunc
	Transcribe TranscribeFunc
	// RequireAPIKey makes /chat fail until /set_api was called
	RequireAPIKey bool
}

// Server holds the mock backend state
type Server struct {
	opts   Options
	logger *slog.Logger
	router chi.Router

	apiKey    string
	histories map[string][]Turn
	resumes   map[string]string

	mu sync.Mutex
}

// New creates a mock backend
func New(opts Options, logger *slog.Logger) *Server {
	if opts.Reply == nil {
		opts.Reply = defaultReply
	}
	if opts.Transcribe == nil {
		opts.Transcribe = defaultTranscribe
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opts:      opts,
		logger:    logger.With(slog.String("component", "mockbackend")),
		histories: make(map[string][]Turn),
		resumes:   make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/set_api", s.handleSetAPI)
	r.Post("/clear_chat", s.handleClearChat)
	r.Post("/upload_resume", s.handleUploadResume)
	r.Post("/speech", s.handleSpeech)
	r.Post("/chat", s.handleChat)
	s.router = r

	return s
}

// Handler returns the HTTP handler serving the endpoints
func (s *Server) Handler() http.Handler {
	return s.router
}

// History returns the stored turns of a session
func (s *Server) History(sessionID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.histories[sessionID]))
	copy(out, s.histories[sessionID])
	return out
}

// APIKey returns the last stored API key
func (s *Server) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// Resume returns the resume filename uploaded for a session
func (s *Server) Resume(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumes[sessionID]
}

func (s *Server) handleSetAPI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "API key is required"})
		return
	}

	s.mu.Lock()
	s.apiKey = req.APIKey
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "API key saved successfully"})
}

func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	s.mu.Lock()
	delete(s.histories, req.SessionID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Chat history cleared"})
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "No file uploaded"})
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "No file uploaded"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "No file selected"})
		return
	}
	if !strings.HasSuffix(header.Filename, ".pdf") {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "Only PDF files allowed"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil || !strings.HasPrefix(string(data), "%PDF") {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "error": "Failed to process resume"})
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = "default"
	}

	s.mu.Lock()
	s.resumes[sessionID] = header.Filename
	s.mu.Unlock()

	s.logger.Info("Resume stored",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("session_id", sessionID),
		slog.String("filename", header.Filename),
		slog.Int("bytes", len(data)),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"message":  fmt.Sprintf("Resume %q uploaded successfully", header.Filename),
		"filename": header.Filename,
	})
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No audio file uploaded"})
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No audio file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	info, err := audio.GetWAVInfo(data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Could not process audio: " + err.Error()})
		return
	}

	text, err := s.opts.Transcribe(info, data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": text})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
		UseResume bool   `json:"use_resume"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No message provided"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	s.mu.Lock()
	keySet := s.apiKey != ""
	history := append([]Turn(nil), s.histories[req.SessionID]...)
	s.mu.Unlock()

	if s.opts.RequireAPIKey && !keySet {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Please set your API key first"})
		return
	}

	answer, err := s.opts.Reply(req.Message, req.UseResume, history)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.histories[req.SessionID] = append(s.histories[req.SessionID], Turn{Question: req.Message, Answer: answer, UseResume: req.UseResume})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"response": answer})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func defaultReply(message string, useResume bool, history []Turn) (string, error) {
	mode := "general"
	if useResume {
		mode = "resume-based"
	}
	return fmt.Sprintf("Thanks for your answer (%d so far). Next %s question: tell me about a challenge you solved recently.", len(history)+1, mode), nil
}

func defaultTranscribe(info *audio.WAVInfo, _ []byte) (string, error) {
	if info.NumSamples == 0 {
		return "", fmt.Errorf("could not process audio: empty recording")
	}
	return fmt.Sprintf("transcribed %.1f seconds of audio", info.Duration), nil
}
