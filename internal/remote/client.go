package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/msomdec/user-desk/internal/domain"
)

// DefaultBaseURL is the public demo API the desk talks to out of the box.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// DefaultMaxResponseBytes caps how much of a response body the client reads.
// The full demo user list is about 5KB.
const DefaultMaxResponseBytes = 1 << 20

// Compile-time interface check.
var _ domain.UserAPI = (*Client)(nil)

// Client implements domain.UserAPI over HTTP/JSON.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	maxBody   int64
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxResponseBytes caps the response body size; larger bodies fail with
// domain.ErrRemote.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

// New creates a users API client.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   DefaultBaseURL,
		userAgent: "user-desk",
		maxBody:   DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every user.
func (c *Client) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create posts the add-form draft as-is. The demo API echoes the body back
// with a synthetic ID.
func (c *Client) Create(ctx context.Context, draft domain.Draft) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "create user", http.MethodPost, "/users", draft, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update puts the edit-form draft to the user's resource.
func (c *Client) Update(ctx context.Context, draft domain.EditDraft) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "update user", http.MethodPut, userPath(draft.ID), draft, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the user's resource.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, "delete user", http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

// do performs a single JSON round trip. A nil body sends no payload and a nil
// result discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: %s: marshal body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s: %w: %w", op, domain.ErrRemote, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return fmt.Errorf("remote: %s: read response: %w: %w", op, domain.ErrRemote, err)
	}
	if int64(len(respBody)) > c.maxBody {
		return fmt.Errorf("remote: %s: response exceeds %d bytes: %w", op, c.maxBody, domain.ErrRemote)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("remote: %s: decode response: %w: %w", op, domain.ErrRemote, err)
		}
	}
	return nil
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("remote: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("remote: %s: HTTP %d", e.Op, e.StatusCode)
}

// Unwrap lets callers match every status failure against domain.ErrRemote.
func (e *StatusError) Unwrap() error {
	return domain.ErrRemote
}

// NotFound reports whether the API answered 404.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
