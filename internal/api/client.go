// Package api is the transport client for the theatre dashboard API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of a failed response we read looking for `detail`.
	maxErrorBody = 64 * 1024
)

// Session is the slice of session state the transport needs.
type Session interface {
	Credential() string
	Clear() error
}

// Client sends JSON requests to the API on behalf of the current session.
type Client struct {
	baseURL        string
	session        Session
	httpClient     *http.Client
	logger         *slog.Logger
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUnauthorizedHandler registers the hook run after a 401 has cleared the session
// (the TUI uses it to return to the login screen).
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, sess Session, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		session:    sess,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetUnauthorizedHandler replaces the 401 hook after construction.
func (c *Client) SetUnauthorizedHandler(fn func()) { c.onUnauthorized = fn }

// Send performs one request. body (when non-nil) is JSON-encoded; a 2xx response is
// decoded into out when out is non-nil and the body is valid JSON. Empty or unparseable
// 2xx bodies leave out untouched.
func (c *Client) Send(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.session != nil {
		if tok := c.session.Credential(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := c.logger.With("request_id", reqID, "method", method, "path", path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err, "duration", time.Since(start))
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	log.Debug("request done", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleUnauthorized(path, resp.Body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode, Message: detailMessage(b, resp.StatusCode)}
		log.Warn("request rejected", "status", resp.StatusCode, "detail", apiErr.Message)
		return apiErr
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		log.Debug("ignoring unparseable success body", "error", err)
	}
	return nil
}

func (c *Client) handleUnauthorized(path string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	msg := ""
	if d, ok := detailString(b); ok {
		msg = d
	}
	if c.session != nil {
		if err := c.session.Clear(); err != nil {
			c.logger.Error("clear session after 401", "error", err)
		}
	}
	c.logger.Info("session cleared after 401", "path", path)
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return &AuthError{Path: path, Message: msg}
}

func detailMessage(b []byte, status int) string {
	if d, ok := detailString(b); ok && d != "" {
		return d
	}
	return fallbackMessage(status)
}

// detailString extracts a string `detail` field. Validation errors send a list there;
// those fall back to the generic message.
func detailString(b []byte) (string, bool) {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &payload); err != nil || len(payload.Detail) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err != nil {
		return "", false
	}
	return s, true
}

// IsUnauthorized is a shorthand for errors.Is(err, ErrUnauthorized).
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
