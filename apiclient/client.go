// Package apiclient implements the HTTP wire contract of the token backend:
// endpoint routes, request/response shapes, and the request pipeline that
// attaches bearer credentials and normalizes transport failures.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-auth-client/autherrors"
)

const (
	contentTypeJSON = "application/json"

	defaultTimeout = 30 * time.Second
)

// Client is the unauthenticated JSON client used for the endpoints that do
// not require a session: token issue, registration, and password reset.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client (primarily for tests and
// for callers that need custom transport settings).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

// BaseURL returns the backend base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NewRequest builds a request for path with a per-request correlation ID.
func (c *Client) NewRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("X-Request-ID", uuid.New().String())

	return req, nil
}

// NewJSONRequest builds a request carrying body encoded as JSON.
func (c *Client) NewJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		buf = bytes.NewReader(data)
	}
	return c.NewRequest(ctx, method, path, contentTypeJSON, buf)
}

// Do sends the request and reads the full response body. Transport failures
// (no response reached the client) are normalized to autherrors.ErrNetwork;
// raw transport errors never escape to callers.
func (c *Client) Do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s", autherrors.ErrNetwork, req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading response from %s", autherrors.ErrNetwork, req.URL.Path)
	}

	return resp.StatusCode, body, nil
}

// DoJSON sends body as JSON and returns the response status and raw body.
func (c *Client) DoJSON(ctx context.Context, method, path string, body any) (int, []byte, error) {
	req, err := c.NewJSONRequest(ctx, method, path, body)
	if err != nil {
		return 0, nil, err
	}
	return c.Do(req)
}
