// Package api is the thin client wrapper over the directory backend. It
// owns wire encoding (snake_case JSON), bearer-token injection from the
// auth session, and error mapping; it holds no state of its own.
package api

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

	"tooldex/pkg/auth"
)

// ErrForbidden is returned before a request is even sent when the current
// session's role cannot perform the operation. The backend enforces this
// too; failing locally keeps the error message consistent.
var ErrForbidden = errors.New("operation not permitted for this role")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Client talks to the directory backend on behalf of a session.
type Client struct {
	baseURL string
	session auth.Session
	client  *http.Client
}

// NewClient creates a backend client. baseURL is the API root, e.g.
// "https://directory.example.org/api".
func NewClient(baseURL string, session auth.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTimeout overrides the default 30 second request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

// Session exposes the session the client was built with.
func (c *Client) Session() auth.Session {
	return c.session
}

// do executes one backend call: marshals body, injects the bearer token,
// and decodes into out (which may be nil for no-content responses).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.session != nil {
		token, err := c.session.Token(ctx)
		if err != nil {
			return fmt.Errorf("get session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError maps an error response body into an *APIError. Bodies
// that are not the expected JSON shape still produce a usable error.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}
	if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// requireModerator guards moderator-or-admin operations locally.
func (c *Client) requireModerator() error {
	if c.session == nil || !c.session.Identity().Role.CanModerate() {
		return ErrForbidden
	}
	return nil
}
