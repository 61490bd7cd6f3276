package openaichat

import (
	"strings"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/stream"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Adapter implements provider.Provider for the Chat Completions API.
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
func (a *Adapter) Name() provider.Name { return provider.OpenAIChat }

// Endpoint implements provider.Provider.
func (a *Adapter) Endpoint() string { return a.baseURL + "/chat/completions" }

// Text returns the first choice's content delta.
func (a *Adapter) Text(ev stream.Event) (string, bool) {
	chunk, ok := ev.(Chunk)
	if !ok || len(chunk.Completion.Choices) == 0 {
		return "", false
	}
	content := chunk.Completion.Choices[0].Delta.Content
	return content, content != ""
}
