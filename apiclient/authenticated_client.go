package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// TokenSource supplies a currently valid access token for an outbound
// request, silently refreshing an expired one first. A fatal refresh
// failure surfaces as autherrors.ErrSessionExpired, after which the caller
// must not retry; the session has already been cleared.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AuthenticatedClient wraps Client with the refresh-on-demand pipeline:
// every request consults the token source before it is sent, so an expired
// access token is exchanged exactly once no matter how many requests are in
// flight.
type AuthenticatedClient struct {
	client *Client
	source TokenSource
}

// NewAuthenticatedClient creates the authenticated request pipeline.
func NewAuthenticatedClient(client *Client, source TokenSource) *AuthenticatedClient {
	return &AuthenticatedClient{
		client: client,
		source: source,
	}
}

// DoJSON sends an authenticated JSON request and returns status and raw body.
func (a *AuthenticatedClient) DoJSON(ctx context.Context, method, path string, body any) (int, []byte, error) {
	req, err := a.client.NewJSONRequest(ctx, method, path, body)
	if err != nil {
		return 0, nil, err
	}
	return a.do(ctx, req)
}

// DoMultipart sends an authenticated multipart/form-data request carrying
// the given text fields plus one binary file part.
func (a *AuthenticatedClient) DoMultipart(ctx context.Context, method, path string, fields map[string]string, fileField, fileName string, file []byte) (int, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return 0, nil, fmt.Errorf("write form field %q: %w", name, err)
		}
	}

	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return 0, nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return 0, nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := a.client.NewRequest(ctx, method, path, writer.FormDataContentType(), &buf)
	if err != nil {
		return 0, nil, err
	}
	return a.do(ctx, req)
}

// Get sends an authenticated GET request.
func (a *AuthenticatedClient) Get(ctx context.Context, path string) (int, []byte, error) {
	req, err := a.client.NewRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return 0, nil, err
	}
	return a.do(ctx, req)
}

func (a *AuthenticatedClient) do(ctx context.Context, req *http.Request) (int, []byte, error) {
	accessToken, err := a.source.Token(ctx)
	if err != nil {
		// ErrSessionExpired or ErrUnauthenticated: the request never
		// goes on the wire.
		drainBody(req)
		return 0, nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	return a.client.Do(req)
}

func drainBody(req *http.Request) {
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
		_ = req.Body.Close()
	}
}
