package transport

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/florianilch/llmwire/internal/provider"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 64 << 10

// Error reports a request that could not be sent or that the provider
// rejected with a non-2xx status. It is fatal: requests are never retried.
type Error struct {
	Provider  provider.Name
	RequestID string
	// Status is zero when no response was received.
	Status int
	// Body is the response body, up to 64 KiB.
	Body string
	// Message is the provider's error message, when the body carries one.
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.Status, detail)
}

// Unwrap returns the underlying connection error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// errorMessage extracts error.message, which OpenAI and Anthropic error
// bodies share.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	return gjson.GetBytes(body, "error.message").String()
}
