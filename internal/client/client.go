// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/citechat/internal/config"
	"github.com/jeranaias/citechat/internal/logger"
	"github.com/jeranaias/citechat/internal/model"
	"github.com/jeranaias/citechat/internal/util"
)

const (
	// MaxResponseSize is the default cap on a /chat response body.
	MaxResponseSize = 10 * 1024 * 1024

	// ConnectionErrorMessage is the only failure text shown in the chat.
	ConnectionErrorMessage = "Connection error. Check the log."

	// maxErrorBody is how much of an error body is kept for the log.
	maxErrorBody = 512
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// No client timeout here; callers opt in with WithTimeout.
	sharedTransport = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
)

// Error variables for backend failures.
var (
	// ErrConnection covers every failed chat round trip.
	ErrConnection = errors.New("connection error")

	// ErrFileNotFound means the backend does not know the requested file.
	ErrFileNotFound = errors.New("file not found")

	// ErrResponseTooLarge means a body went over the configured cap.
	ErrResponseTooLarge = errors.New("response too large")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string               `json:"message"`
	History []model.HistoryEntry `json:"history"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response *string `json:"response"`
}

// clearResponse is the body returned by POST /clear.
type clearResponse struct {
	Status string `json:"status"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one backend. It is safe for concurrent use once built.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	userAgent       string
	maxResponseSize int64
	log             *zap.Logger
}

// NewClient creates a client for the backend at baseURL with no request
// timeout and the shared connection pool.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      &http.Client{Transport: sharedTransport},
		userAgent:       "citechat",
		maxResponseSize: MaxResponseSize,
		log:             logger.L().Named("client"),
	}
}

// NewFromConfig creates a client from the [server] and [client] sections.
func NewFromConfig(cfg *config.Config) *Client {
	c := NewClient(cfg.Server.URL).
		WithTimeout(time.Duration(cfg.Client.TimeoutSecs) * time.Second).
		WithUserAgent(cfg.Client.UserAgent)
	if cfg.Client.MaxResponseMB > 0 {
		c.WithMaxResponseSize(int64(cfg.Client.MaxResponseMB) * 1024 * 1024)
	}
	return c
}

// WithTimeout bounds each request. Zero leaves it to the transport.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient = &http.Client{Transport: c.httpClient.Transport, Timeout: timeout}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithMaxResponseSize caps /chat response bodies.
func (c *Client) WithMaxResponseSize(n int64) *Client {
	c.maxResponseSize = n
	return c
}

// WithLogger sets the diagnostic logger.
func (c *Client) WithLogger(l *zap.Logger) *Client {
	if l != nil {
		c.log = l
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DownloadURL returns the link for a file name.
func (c *Client) DownloadURL(fileName string) string {
	return DownloadURL(c.baseURL, fileName)
}

// DownloadURL joins base and the escaped file name into a download link.
func DownloadURL(base, fileName string) string {
	return strings.TrimRight(base, "/") + "/download/" + url.PathEscape(fileName)
}

// =============================================================================
// CHAT
// =============================================================================

// Send posts message and history to /chat and returns the raw reply text.
// There is no retry. Any failure wraps ErrConnection and is logged in full.
func (c *Client) Send(ctx context.Context, message string, history []model.HistoryEntry) (string, error) {
	if history == nil {
		history = []model.HistoryEntry{}
	}

	start := time.Now()
	reply, err := c.send(ctx, message, history)
	if err != nil {
		c.log.Warn("chat request failed",
			zap.Int("history_len", len(history)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrConnection, err)
	}

	c.log.Debug("chat reply received",
		zap.Int("history_len", len(history)),
		zap.Int("reply_len", len(reply)),
		zap.Duration("elapsed", time.Since(start)))
	return reply, nil
}

func (c *Client) send(ctx context.Context, message string, history []model.HistoryEntry) (string, error) {
	body, err := json.Marshal(ChatRequest{Message: message, History: history})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/chat", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, c.maxResponseSize)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newStatusError(http.MethodPost, "/chat", resp.StatusCode, data)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Response == nil {
		return "", errors.New("failed to parse response: missing \"response\" field")
	}
	return *chatResp.Response, nil
}

// Clear tells the backend to start a new chat.
func (c *Client) Clear(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/clear", nil)
	if err != nil {
		c.log.Warn("clear request failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, maxErrorBody*8)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := newStatusError(http.MethodPost, "/clear", resp.StatusCode, data)
		c.log.Warn("clear request failed", zap.Error(statusErr))
		return fmt.Errorf("%w: %w", ErrConnection, statusErr)
	}

	var cr clearResponse
	if err := json.Unmarshal(data, &cr); err != nil || cr.Status != "ok" {
		c.log.Debug("unexpected clear response", zap.ByteString("body", data))
	}
	return nil
}

// =============================================================================
// DOWNLOAD
// =============================================================================

// Download opens the file behind /download/<fileName>. The caller closes the
// returned body. A 404 yields ErrFileNotFound.
func (c *Client) Download(ctx context.Context, fileName string) (io.ReadCloser, error) {
	path := "/download/" + url.PathEscape(fileName)

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, fileName)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		data, _ := readLimited(resp.Body, maxErrorBody)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, newStatusError(http.MethodGet, path, resp.StatusCode, data))
	}

	return resp.Body, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug("request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// readLimited reads at most limit bytes and fails if the body holds more.
// SECURITY: Response size limit prevents memory exhaustion.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}
	return data, nil
}

func newStatusError(method, path string, status int, body []byte) *StatusError {
	text := strings.TrimSpace(string(body))
	return &StatusError{Method: method, Path: path, Status: status, Body: util.TruncateRunes(text, maxErrorBody)}
}
