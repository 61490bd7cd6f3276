package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/florianilch/llmwire/internal/scenario"
	"github.com/florianilch/llmwire/internal/stream"
)

// Name identifies a wire format.
type Name string

const (
	OpenAIChat      Name = "openai-api"
	OpenAIResponses Name = "openai-responses"
	Anthropic       Name = "anthropic"
)

// Names returns the supported wire formats in presentation order.
func Names() []Name {
	return []Name{OpenAIChat, OpenAIResponses, Anthropic}
}

// ParseName validates a provider name. "openai" is accepted as an alias
// for the chat completions format.
func ParseName(s string) (Name, error) {
	if s == "openai" {
		return OpenAIChat, nil
	}
	n := Name(s)
	if !slices.Contains(Names(), n) {
		return "", fmt.Errorf("unknown provider %q (expected one of %v)", s, Names())
	}
	return n, nil
}

// Vendor returns the company operating the API behind the wire format.
func (n Name) Vendor() string {
	if n == Anthropic {
		return "anthropic"
	}
	return "openai"
}

// KeyEnv returns the environment variable holding the API key.
func (n Name) KeyEnv() string {
	if n.Vendor() == "anthropic" {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// Title is the human readable name used in headings.
func (n Name) Title() string {
	switch n {
	case OpenAIChat:
		return "OpenAI Chat Completions"
	case OpenAIResponses:
		return "OpenAI Responses"
	case Anthropic:
		return "Anthropic Messages"
	default:
		return string(n)
	}
}

// Provider translates scenarios into one wire format and decodes that
// format's streamed responses. Implementations must remain stateless.
type Provider interface {
	// Name returns the wire format implemented.
	Name() Name

	// Endpoint returns the URL the payload is posted to.
	Endpoint() string

	// BuildPayload maps the scenario into the provider's request schema.
	// The result is a pure function of its arguments. Scenarios the format
	// cannot express fail with *ConfigurationError.
	BuildPayload(s scenario.Scenario, model string) (Payload, error)

	// Decode lazily decodes the server-sent event stream read from r.
	// The sequence ends at the format's terminal marker or at EOF.
	Decode(r io.Reader) iter.Seq[stream.Event]

	// Text returns the text fragment carried by an event decoded by this provider.
	Text(ev stream.Event) (string, bool)
}

// Payload is a serialized request body.
type Payload struct {
	Provider Name
	Model    string
	Body     []byte
}

// Marshal encodes v as the body of a payload. HTML characters are left
// unescaped so the body matches what the provider SDKs send.
func Marshal(p Name, model string, v any) (Payload, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return Payload{}, fmt.Errorf("encode %s payload: %w", p, err)
	}
	return Payload{
		Provider: p,
		Model:    model,
		Body:     bytes.TrimSuffix(buf.Bytes(), []byte("\n")),
	}, nil
}
