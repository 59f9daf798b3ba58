package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Endpoint paths of the InterviewIQ backend
const (
	EndpointChat         = "/chat"
	EndpointSpeech       = "/speech"
	EndpointSetAPI       = "/set_api"
	EndpointUploadResume = "/upload_resume"
	EndpointClearChat    = "/clear_chat"
)

// DefaultSessionID is the only session the client ever talks to
const DefaultSessionID = "default"

// Client provides HTTP client functionality for the InterviewIQ backend
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer

	// Statistics
	totalRequests   uint64
	successRequests uint64
	failedRequests  uint64
	avgResponseTime time.Duration

	mu sync.RWMutex
}

// Config contains backend client configuration
type Config struct {
	BaseURL   string
	SessionID string
	// Timeout of zero leaves requests unbounded
	Timeout   time.Duration
	UserAgent string
}

// Observer is notified after every request, typically to record metrics.
// outcome is "ok" when a response was decoded and "transport_error" otherwise.
type Observer interface {
	RequestFinished(endpoint, outcome string, durationSeconds float64)
}

// ClientStats represents client statistics
type ClientStats struct {
	TotalRequests   uint64        `json:"total_requests"`
	SuccessRequests uint64        `json:"success_requests"`
	FailedRequests  uint64        `json:"failed_requests"`
	SuccessRate     float64       `json:"success_rate"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
}

// NewClient creates a new backend HTTP client
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.SessionID == "" {
		config.SessionID = DefaultSessionID
	}

	if config.Timeout < 0 {
		config.Timeout = 0
	}

	if config.UserAgent == "" {
		config.UserAgent = "InterviewIQ-Client/1.0"
	}

	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "backend")),
	}, nil
}

// SetObserver registers a request observer
func (c *Client) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// SessionID returns the conversation id sent with every request
func (c *Client) SessionID() string {
	return c.config.SessionID
}

// Chat sends a text message to /chat
func (c *Client) Chat(ctx context.Context, message string, useResume bool) (*ChatResult, error) {
	payload := chatRequest{
		Message:   message,
		SessionID: c.config.SessionID,
		UseResume: useResume,
	}

	var resp chatResponse
	if err := c.postJSON(ctx, EndpointChat, payload, &resp); err != nil {
		return nil, err
	}

	return resp.result(), nil
}

// Speech uploads a WAV recording to /speech for transcription
func (c *Client) Speech(ctx context.Context, wav []byte, useResume bool) (*SpeechResult, error) {
	body, contentType, err := buildMultipart(
		filePart{field: "audio", filename: "recording.wav", contentType: "audio/wav", data: bytes.NewReader(wav)},
		map[string]string{
			"session_id": c.config.SessionID,
			"use_resume": strconv.FormatBool(useResume),
		},
	)
	if err != nil {
		return nil, &TransportError{Endpoint: EndpointSpeech, Err: fmt.Errorf("failed to create multipart request: %w", err)}
	}

	var resp speechResponse
	if err := c.do(ctx, EndpointSpeech, body, contentType, &resp); err != nil {
		return nil, err
	}

	return resp.result(), nil
}

// SetAPIKey stores the HuggingFace token on the backend session
func (c *Client) SetAPIKey(ctx context.Context, apiKey string) (*APIKeyResult, error) {
	var resp statusResponse
	if err := c.postJSON(ctx, EndpointSetAPI, setAPIRequest{APIKey: apiKey}, &resp); err != nil {
		return nil, err
	}

	return &APIKeyResult{
		Saved:   resp.Status == "success",
		Message: resp.Message,
		Error:   resp.Error,
	}, nil
}

// UploadResume uploads a PDF resume read from r
func (c *Client) UploadResume(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	body, contentType, err := buildMultipart(
		filePart{field: "resume", filename: filepath.Base(filename), contentType: "application/pdf", data: r},
		map[string]string{"session_id": c.config.SessionID},
	)
	if err != nil {
		return nil, &TransportError{Endpoint: EndpointUploadResume, Err: fmt.Errorf("failed to create multipart request: %w", err)}
	}

	var resp statusResponse
	if err := c.do(ctx, EndpointUploadResume, body, contentType, &resp); err != nil {
		return nil, err
	}

	return resp.uploadResult(), nil
}

// ClearChat drops the server-side history of the session
func (c *Client) ClearChat(ctx context.Context) (*ClearResult, error) {
	var resp statusResponse
	if err := c.postJSON(ctx, EndpointClearChat, clearRequest{SessionID: c.config.SessionID}, &resp); err != nil {
		return nil, err
	}

	return &ClearResult{Cleared: resp.Status == "success"}, nil
}

// postJSON marshals payload and posts it to endpoint
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	return c.do(ctx, endpoint, bytes.NewReader(data), "application/json", out)
}

// do performs a single request and decodes the JSON body into out.
// Status codes are not interpreted: error bodies carry the same JSON shape.
func (c *Client) do(ctx context.Context, endpoint string, body io.Reader, contentType string, out any) error {
	startTime := time.Now()
	c.incrementTotalRequests()

	err := c.roundTrip(ctx, endpoint, body, contentType, out)

	elapsed := time.Since(startTime)
	outcome := "ok"
	if err != nil {
		outcome = "transport_error"
		c.incrementFailedRequests()
		c.logger.Warn("Backend request failed",
			slog.String("endpoint", endpoint),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	} else {
		c.incrementSuccessRequests()
		c.updateAvgResponseTime(elapsed)
	}

	c.mu.RLock()
	observer := c.observer
	c.mu.RUnlock()
	if observer != nil {
		observer.RequestFinished(endpoint, outcome, elapsed.Seconds())
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, endpoint string, body io.Reader, contentType string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+endpoint, body)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to create HTTP request: %w", err)}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("Backend request",
		slog.String("endpoint", endpoint),
		slog.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to parse response JSON: %w", err),
		}
	}

	c.logger.Debug("Backend response",
		slog.String("endpoint", endpoint),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
	)

	return nil
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        io.Reader
}

// buildMultipart creates a multipart/form-data body with one file and plain fields
func buildMultipart(file filePart, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(file.field), escapeQuotes(file.filename)))
	header.Set("Content-Type", file.contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file.data); err != nil {
		return nil, "", fmt.Errorf("failed to write %s: %w", file.field, err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Statistics methods
func (c *Client) incrementTotalRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
}

func (c *Client) incrementSuccessRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successRequests++
}

func (c *Client) incrementFailedRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedRequests++
}

func (c *Client) updateAvgResponseTime(responseTime time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple moving average
	if c.avgResponseTime == 0 {
		c.avgResponseTime = responseTime
	} else {
		c.avgResponseTime = (c.avgResponseTime + responseTime) / 2
	}
}

// GetStats returns current client statistics
func (c *Client) GetStats() ClientStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	successRate := float64(0)
	if c.totalRequests > 0 {
		successRate = float64(c.successRequests) / float64(c.totalRequests) * 100
	}

	return ClientStats{
		TotalRequests:   c.totalRequests,
		SuccessRequests: c.successRequests,
		FailedRequests:  c.failedRequests,
		SuccessRate:     successRate,
		AvgResponseTime: c.avgResponseTime,
	}
}
