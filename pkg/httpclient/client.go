package httpclient

import (
	"context"
	"net/http"
	"time"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable)
	// errors from sites that reject unknown user agents
	BrowserClient ClientType = "browser"

	// CloudflareClient uses simple headers (like curl) to avoid 403
	// (Forbidden) errors from Cloudflare-protected storefronts
	CloudflareClient ClientType = "cloudflare"

	// APIClient sends JSON accept headers and a bearer token; used for the
	// GitHub/Ravelry/Thingiverse integrations and the backend API wrapper
	APIClient ClientType = "api"
)

// TokenSource supplies a bearer token for authenticated requests. The auth
// package's sessions implement this.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// HTTPClient wraps an http.Client with a header profile and an optional
// token source.
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	tokens     TokenSource
}

// NewClient creates a new HTTP client with the specified type
func NewClient(clientType ClientType) *HTTPClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
	}
}

// NewAuthorizedClient creates an API-profile client whose requests carry a
// bearer token from the given source.
func NewAuthorizedClient(tokens TokenSource) *HTTPClient {
	c := NewClient(APIClient)
	c.tokens = tokens
	return c
}

// SetTimeout overrides the default 30 second request timeout.
func (c *HTTPClient) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.setHeaders(req); err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// GetContext is Get with a caller-supplied context.
func (c *HTTPClient) GetContext(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Head is a convenience method for HEAD requests, used for link health checks
func (c *HTTPClient) Head(url string) (*http.Response, error) {
	return c.HeadContext(context.Background(), url)
}

// HeadContext is Head with a caller-supplied context.
func (c *HTTPClient) HeadContext(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) error {
	switch c.clientType {
	case BrowserClient:
		// Browser-like headers to avoid 406 (Not Acceptable) errors
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case CloudflareClient:
		// Simple headers like curl to avoid 403 (Forbidden) errors from Cloudflare
		// Cloudflare allows simple tools like curl but blocks browser-like User-Agents
		req.Header.Set("User-Agent", "curl/8.7.1")

	case APIClient:
		req.Header.Set("Accept", "application/json")
		if c.tokens != nil {
			token, err := c.tokens.Token(req.Context())
			if err != nil {
				return err
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}

	default:
		// Default: use Go's default User-Agent
	}
	return nil
}
