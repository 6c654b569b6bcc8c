// Package remote talks to the notes REST backend.
//
// Endpoints:
//
//	POST   /auth/login   (form: username, password) -> {access_token, token_type}
//	POST   /auth/signup  {name, email, password}     -> {id, name, email}
//	GET    /auth/me                                   -> {id, name, email}
//	GET    /notes/                                    -> [{id, title, content, ...}]
//	POST   /notes/       {title, content}             -> {id, title, content, ...}
//	PUT    /notes/{id}   {title, content}
//	DELETE /notes/{id}
//
// Authenticated calls carry "Authorization: Bearer <token>".
package remote

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

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/pkg/core"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("API error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("API error: status=%d, detail=%s", e.StatusCode, e.Detail)
}

// Is maps status codes onto the domain sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case core.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case core.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProfileTTL sets how long /auth/me answers are cached per token.
func WithProfileTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.profileTTL = ttl
	}
}

// Client is the HTTP client for the notes backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	profileTTL time.Duration
	profiles   *cache.Cache
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     zap.NewNop(),
		profileTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.profiles = cache.New(c.profileTTL, 10*time.Minute)
	return c
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// doRequest performs a JSON request. body may be nil.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, token)
}

// doForm performs a form-encoded POST.
func (c *Client) doForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, "")
}

func (c *Client) send(req *http.Request, token string) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.logger.Debug("api call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// decodeResponse turns a >=400 status into *APIError and otherwise decodes
// the body into target (nil or 204 skips decoding).
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(body)}
	}
	if target == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorDetail extracts {"detail": ...} when present.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}

// flexID accepts both numeric and string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*f = flexID(n.String())
	return nil
}

// IsUnauthorized reports whether err means the session is no longer accepted.
func IsUnauthorized(err error) bool {
	return errors.Is(err, core.ErrUnauthorized)
}
