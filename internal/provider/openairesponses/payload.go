package openairesponses

import (
	"encoding/json"
	"fmt"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/scenario"
)

type responsesRequest struct {
	Model           string         `json:"model"`
	Instructions    string         `json:"instructions,omitempty"`
	Input           responsesInput `json:"input"`
	Tools           []functionTool `json:"tools,omitempty"`
	ToolChoice      string         `json:"tool_choice,omitempty"`
	MaxOutputTokens int64          `json:"max_output_tokens,omitempty"`
	Store           bool           `json:"store"`
	Stream          bool           `json:"stream"`
}

// responsesInput is either a plain string or a list of input items.
type responsesInput struct {
	Text  string
	Items []inputItem
}

// MarshalJSON implements json.Marshaler.
func (in responsesInput) MarshalJSON() ([]byte, error) {
	if in.Items == nil {
		return json.Marshal(in.Text)
	}
	return json.Marshal(in.Items)
}

// inputItem is a message, function_call or function_call_output item.
type inputItem struct {
	Type string `json:"type"`
	// message
	Role    string        `json:"role,omitempty"`
	Content []contentPart `json:"content,omitempty"`
	// function_call and function_call_output
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	// function_call_output, present even when empty
	Output *string `json:"output,omitempty"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type functionTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// BuildPayload implements provider.Provider.
func (a *Adapter) BuildPayload(s scenario.Scenario, model string) (provider.Payload, error) {
	for i, turn := range s.Turns {
		if turn.Role == scenario.RoleInstruction && !turn.TextOnly() {
			return provider.Payload{}, provider.Unsupported(provider.OpenAIResponses, string(s.Name), "turn %d: instructions must be text", i)
		}
	}

	input, err := toInput(s)
	if err != nil {
		return provider.Payload{}, err
	}

	req := responsesRequest{
		Model:           model,
		Instructions:    s.Instructions(),
		Input:           input,
		Tools:           toTools(s.Tools),
		ToolChoice:      s.ToolChoice,
		MaxOutputTokens: s.MaxTokens,
		Store:           false,
		Stream:          true,
	}
	return provider.Marshal(provider.OpenAIResponses, model, req)
}

func toInput(s scenario.Scenario) (responsesInput, error) {
	turns := s.Conversation()
	if len(turns) == 1 && turns[0].Role == scenario.RoleUser && turns[0].TextOnly() {
		return responsesInput{Text: turns[0].Text()}, nil
	}

	items := make([]inputItem, 0, len(turns))
	for i, turn := range turns {
		var err error
		switch turn.Role {
		case scenario.RoleUser:
			var parts []contentPart
			parts, err = userParts(turn)
			items = append(items, inputItem{Type: "message", Role: "user", Content: parts})
		case scenario.RoleAssistant:
			items, err = appendAssistant(items, turn)
		case scenario.RoleTool:
			items, err = appendToolOutputs(items, turn)
		default:
			err = fmt.Errorf("unknown role %q", turn.Role)
		}
		if err != nil {
			return responsesInput{}, provider.Unsupported(provider.OpenAIResponses, string(s.Name), "conversation turn %d: %v", i, err)
		}
	}
	return responsesInput{Items: items}, nil
}

func userParts(turn scenario.Turn) ([]contentPart, error) {
	parts := make([]contentPart, 0, len(turn.Content))
	for _, c := range turn.Content {
		switch c := c.(type) {
		case scenario.Text:
			parts = append(parts, contentPart{Type: "input_text", Text: c.Text})
		case scenario.Image:
			parts = append(parts, contentPart{Type: "input_image", ImageURL: c.DataURI()})
		default:
			return nil, fmt.Errorf("%T in user turn", c)
		}
	}
	return parts, nil
}

// appendAssistant emits prior assistant text as an output_text message and
// each tool call as a function_call item.
func appendAssistant(items []inputItem, turn scenario.Turn) ([]inputItem, error) {
	for _, c := range turn.Content {
		switch c := c.(type) {
		case scenario.Text:
			items = append(items, inputItem{
				Type:    "message",
				Role:    "assistant",
				Content: []contentPart{{Type: "output_text", Text: c.Text}},
			})
		case scenario.ToolCall:
			items = append(items, inputItem{
				Type:      "function_call",
				CallID:    c.ID,
				Name:      c.Name,
				Arguments: c.Arguments,
			})
		default:
			return nil, fmt.Errorf("%T in assistant turn", c)
		}
	}
	return items, nil
}

func appendToolOutputs(items []inputItem, turn scenario.Turn) ([]inputItem, error) {
	for _, c := range turn.Content {
		result, ok := c.(scenario.ToolResult)
		if !ok {
			return nil, fmt.Errorf("tool turns carry tool results only, got %T", c)
		}
		output, err := provider.ToolOutputText(result)
		if err != nil {
			return nil, err
		}
		items = append(items, inputItem{
			Type:   "function_call_output",
			CallID: result.CallID,
			Output: &output,
		})
	}
	return items, nil
}

func toTools(tools []scenario.Tool) []functionTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]functionTool, len(tools))
	for i, t := range tools {
		out[i] = functionTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		}
	}
	return out
}
