package anthropicmessages

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/stream"
)

const (
	// DefaultBaseURL is the Anthropic API root.
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// APIVersion is sent as the anthropic-version header.
	APIVersion = "2023-06-01"

	// DefaultMaxTokens applies when the scenario carries no hint. The
	// Messages API requires max_tokens.
	DefaultMaxTokens = 1024
)

// Adapter implements provider.Provider for the Messages API.
type Adapter struct {
	baseURL string
}

var _ provider.Provider = (*Adapter)(nil)

// New returns an adapter posting to baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Name implements provider.Provider.
func (a *Adapter) Name() provider.Name { return provider.Anthropic }

// Endpoint implements provider.Provider.
func (a *Adapter) Endpoint() string { return a.baseURL + "/messages" }

// Text returns the text of content_block_delta events carrying a text_delta.
func (a *Adapter) Text(ev stream.Event) (string, bool) {
	e, ok := ev.(Event)
	if !ok {
		return "", false
	}
	delta, ok := e.Message.AsAny().(anthropic.ContentBlockDeltaEvent)
	if !ok {
		return "", false
	}
	text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
	if !ok || text.Text == "" {
		return "", false
	}
	return text.Text, true
}
