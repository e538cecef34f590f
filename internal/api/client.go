// HTTP client adapter for the book-generation backend.
//
// Wraps outgoing requests with session-cookie attachment, timeouts, and
// uniform error normalization.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds simple reads.
	DefaultTimeout = 15 * time.Second
	// DefaultLongTimeout bounds generation and download calls, which can run
	// many minutes while the backend renders a book.
	DefaultLongTimeout = 10 * time.Minute
)

// Client provides methods for making requests to the backend REST API.
//
// Credentials are session cookies held in the underlying [http.CookieJar];
// the adapter never attaches bespoke tokens.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	longTimeout time.Duration
}

// NewClient creates a new API client for the given base URL.
//
// A nil http.Client gets a fresh client; a client without a cookie jar gets
// one installed so login responses establish the session.
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000/api"
	}
	if client == nil {
		client = &http.Client{}
	}
	if client.Jar == nil {
		// cookiejar.New only errors on bad options; nil options cannot fail.
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
	}

	return &Client{
		baseURL:     baseURL,
		httpClient:  client,
		timeout:     DefaultTimeout,
		longTimeout: DefaultLongTimeout,
	}
}

// SetTimeouts overrides the default and long-call timeouts.
// Non-positive values keep the current setting.
func (c *Client) SetTimeouts(timeout, longTimeout time.Duration) {
	if timeout > 0 {
		c.timeout = timeout
	}
	if longTimeout > 0 {
		c.longTimeout = longTimeout
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ImportCookies seeds the cookie jar for the backend host, letting an
// existing browser session drive the client.
func (c *Client) ImportCookies(cookies []*http.Cookie) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	c.httpClient.Jar.SetCookies(u, cookies)
	return nil
}

// Cookies returns the jar's cookies for the backend host, for persisting
// the session between invocations.
func (c *Client) Cookies() []*http.Cookie {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// CallOption adjusts a single request.
type CallOption func(*callConfig)

type callConfig struct {
	timeout time.Duration
}

// WithTimeout overrides the request timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(cfg *callConfig) { cfg.timeout = d }
}

// WithLongTimeout applies the long-call timeout to one call.
func (c *Client) WithLongTimeout() CallOption {
	return WithTimeout(c.longTimeout)
}

// Response represents a decoded API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Decode unmarshals the response body into target.
func (r *Response) Decode(target any) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Get performs a GET request to the specified path.
func (c *Client) Get(ctx context.Context, path string, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with the given value marshaled as JSON.
// A nil body sends an empty request, as the logout and cancel endpoints expect.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...CallOption) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, path, payload, opts...)
}

// Delete performs a DELETE request to the specified path.
func (c *Client) Delete(ctx context.Context, path string, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, opts...)
}

// GetJSON performs a GET request and decodes a 2xx response into target.
func (c *Client) GetJSON(ctx context.Context, path string, target any, opts ...CallOption) error {
	resp, err := c.Get(ctx, path, opts...)
	if err != nil {
		return err
	}
	return resp.Decode(target)
}

// PostJSON performs a POST request and decodes a 2xx response into target.
// Pass a nil target to discard the response body.
func (c *Client) PostJSON(ctx context.Context, path string, body, target any, opts ...CallOption) error {
	resp, err := c.Post(ctx, path, body, opts...)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	return resp.Decode(target)
}

// Download fetches a binary payload (the rendered PDF) using the long
// timeout unless overridden.
func (c *Client) Download(ctx context.Context, path string, opts ...CallOption) ([]byte, error) {
	merged := append([]CallOption{WithTimeout(c.longTimeout)}, opts...)
	resp, err := c.do(ctx, http.MethodGet, path, nil, merged...)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// do executes one request, normalizing every failure into an [*Error].
// Non-2xx statuses return both the response and the normalized error.
func (c *Client) do(ctx context.Context, method, path string, body []byte, opts ...CallOption) (*Response, error) {
	cfg := callConfig{timeout: c.timeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	apiResp := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiResp, newError(resp.StatusCode, data)
	}

	return apiResp, nil
}
