package openairesponses

import (
	"strings"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/stream"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Adapter implements provider.Provider for the Responses API.
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
func (a *Adapter) Name() provider.Name { return provider.OpenAIResponses }

// Endpoint implements provider.Provider.
func (a *Adapter) Endpoint() string { return a.baseURL + "/responses" }

// Text returns the delta of "response.output_text.delta" events.
func (a *Adapter) Text(ev stream.Event) (string, bool) {
	e, ok := ev.(Event)
	if !ok || e.Type != TypeOutputTextDelta || e.Delta == "" {
		return "", false
	}
	return e.Delta, true
}
