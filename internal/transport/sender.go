package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/florianilch/llmwire/internal/provider"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Client-Request-Id"

// Sender posts payloads for one provider.
type Sender struct {
	provider provider.Name
	client   *http.Client
}

// Option configures a Sender.
type Option func(*options)

type options struct {
	base http.RoundTripper
}

// WithTransport replaces http.DefaultTransport as the innermost round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.base = rt
	}
}

// New returns a Sender authenticating with apiKey.
func New(p provider.Name, apiKey string, opts ...Option) *Sender {
	o := options{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	return &Sender{
		provider: p,
		client: &http.Client{
			Transport: traceContextTransport(authTransport(p, apiKey, o.base)),
		},
	}
}

// Response is an accepted streaming response. Body must be closed.
type Response struct {
	RequestID string
	Status    int
	Body      io.ReadCloser
}

// Send posts body to endpoint and returns the open event stream. Failures
// to connect and non-2xx responses are returned as *Error.
func (s *Sender) Send(ctx context.Context, endpoint string, body []byte) (*Response, error) {
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", s.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(RequestIDHeader, requestID)

	slog.DebugContext(ctx, "sending request",
		"endpoint", endpoint,
		"request_id", requestID,
		"bytes", len(body),
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: s.provider, RequestID: requestID, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Provider:  s.provider,
			RequestID: requestID,
			Status:    resp.StatusCode,
			Body:      string(raw),
			Message:   errorMessage(raw),
			Err:       readErr,
		}
	}

	slog.DebugContext(ctx, "stream opened",
		"request_id", requestID,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return &Response{RequestID: requestID, Status: resp.StatusCode, Body: resp.Body}, nil
}
