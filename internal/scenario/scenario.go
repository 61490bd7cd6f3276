package scenario

import (
	"fmt"
	"strings"
)

// Role identifies who produced a turn.
type Role string

const (
	// RoleInstruction carries system/developer instructions.
	RoleInstruction Role = "instruction"
	RoleUser        Role = "user"
	RoleAssistant   Role = "assistant"
	// RoleTool carries the results of previously requested tool calls.
	RoleTool Role = "tool"
)

// Content is one content item of a turn. The set of implementations is closed.
type Content interface {
	content()
}

// Text is a plain text content item.
type Text struct {
	Text string
}

// Image is an image content item. Exactly one of Data or URL is set.
type Image struct {
	// MediaType is the MIME type of Data, e.g. "image/png".
	MediaType string
	// Data is the base64 (standard encoding) image payload.
	Data string
	// URL references a remote image.
	URL string
}

// ToolCall is an assistant request to invoke a declared tool.
type ToolCall struct {
	ID   string
	Name string
	// Arguments is the JSON encoded argument object.
	Arguments string
}

// ToolResult answers the ToolCall with the matching CallID.
type ToolResult struct {
	CallID  string
	Content []Content
}

func (Text) content()       {}
func (Image) content()      {}
func (ToolCall) content()   {}
func (ToolResult) content() {}

// Encoding describes how an image travels on the wire.
type Encoding string

const (
	EncodingBase64 Encoding = "base64"
	EncodingURL    Encoding = "url"
)

// Encoding reports whether the image is inline base64 data or a URL reference.
func (i Image) Encoding() Encoding {
	if i.URL != "" {
		return EncodingURL
	}
	return EncodingBase64
}

// DataURI renders the image as a data URI, or returns the URL unchanged.
func (i Image) DataURI() string {
	if i.Encoding() == EncodingURL {
		return i.URL
	}
	return "data:" + i.MediaType + ";base64," + i.Data
}

// Turn is one message-equivalent unit of a scenario.
type Turn struct {
	Role    Role
	Content []Content
}

// Text returns the concatenated text items of the turn.
func (t Turn) Text() string {
	var sb strings.Builder
	for _, c := range t.Content {
		if text, ok := c.(Text); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

// TextOnly reports whether the turn consists of text items only.
func (t Turn) TextOnly() bool {
	for _, c := range t.Content {
		if _, ok := c.(Text); !ok {
			return false
		}
	}
	return true
}

// Tool declares a function the model may call.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON schema object describing the arguments.
	Parameters map[string]any
}

// Scenario is a named, ordered conversation.
type Scenario struct {
	Name  Name
	Turns []Turn
	Tools []Tool
	// ToolChoice is "auto" or empty (provider default).
	ToolChoice string
	// MaxTokens is a response length hint; zero leaves the provider default.
	MaxTokens int64
}

// Instructions returns the text of all instruction turns joined by blank lines.
func (s Scenario) Instructions() string {
	var parts []string
	for _, t := range s.Turns {
		if t.Role == RoleInstruction {
			parts = append(parts, t.Text())
		}
	}
	return strings.Join(parts, "\n\n")
}

// Conversation returns the turns that are not instructions, in order.
func (s Scenario) Conversation() []Turn {
	turns := make([]Turn, 0, len(s.Turns))
	for _, t := range s.Turns {
		if t.Role != RoleInstruction {
			turns = append(turns, t)
		}
	}
	return turns
}

// Tool returns the declared tool with the given name.
func (s Scenario) Tool(name string) (Tool, bool) {
	for _, t := range s.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// String implements fmt.Stringer for log output.
func (s Scenario) String() string {
	return fmt.Sprintf("%s (%d turns, %d tools)", s.Name, len(s.Turns), len(s.Tools))
}
