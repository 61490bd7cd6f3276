package anthropicmessages

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/scenario"
)

// messagesRequest mirrors anthropic.MessageNewParams plus the stream flag,
// which the SDK sets on the wire itself.
type messagesRequest struct {
	Model      string                          `json:"model"`
	MaxTokens  int64                           `json:"max_tokens"`
	System     string                          `json:"system,omitempty"`
	Messages   []anthropic.MessageParam        `json:"messages"`
	Tools      []anthropic.ToolUnionParam      `json:"tools,omitempty"`
	ToolChoice *anthropic.ToolChoiceUnionParam `json:"tool_choice,omitempty"`
	Stream     bool                            `json:"stream"`
}

// BuildPayload implements provider.Provider.
func (a *Adapter) BuildPayload(s scenario.Scenario, model string) (provider.Payload, error) {
	unsupported := func(format string, args ...any) error {
		return provider.Unsupported(provider.Anthropic, string(s.Name), format, args...)
	}

	for i, turn := range s.Turns {
		if turn.Role == scenario.RoleInstruction && !turn.TextOnly() {
			return provider.Payload{}, unsupported("turn %d: instructions must be text", i)
		}
	}

	messages, err := toMessages(s.Conversation())
	if err != nil {
		return provider.Payload{}, unsupported("%v", err)
	}

	tools, err := toTools(s.Tools)
	if err != nil {
		return provider.Payload{}, unsupported("%v", err)
	}

	maxTokens := s.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	req := messagesRequest{
		Model:      model,
		MaxTokens:  maxTokens,
		System:     s.Instructions(),
		Messages:   messages,
		Tools:      tools,
		ToolChoice: toToolChoice(s.ToolChoice),
		Stream:     true,
	}
	return provider.Marshal(provider.Anthropic, model, req)
}

func toMessages(turns []scenario.Turn) ([]anthropic.MessageParam, error) {
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for i, turn := range turns {
		var (
			role   anthropic.MessageParamRole
			blocks []anthropic.ContentBlockParamUnion
			err    error
		)
		switch turn.Role {
		case scenario.RoleUser:
			role = anthropic.MessageParamRoleUser
			blocks, err = fromUserContent(turn.Content)
		case scenario.RoleAssistant:
			role = anthropic.MessageParamRoleAssistant
			blocks, err = fromAssistantContent(turn.Content)
		case scenario.RoleTool:
			role = anthropic.MessageParamRoleUser
			blocks, err = fromToolResults(turn.Content)
		default:
			err = fmt.Errorf("unknown role %q", turn.Role)
		}
		if err != nil {
			return nil, fmt.Errorf("conversation turn %d: %w", i, err)
		}

		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content = append(messages[n-1].Content, blocks...)
			continue
		}
		messages = append(messages, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return messages, nil
}

func fromUserContent(content []scenario.Content) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(content))
	for _, c := range content {
		switch c := c.(type) {
		case scenario.Text:
			blocks = append(blocks, anthropic.NewTextBlock(c.Text))
		case scenario.Image:
			blocks = append(blocks, fromImage(c))
		default:
			return nil, fmt.Errorf("%T in user turn", c)
		}
	}
	return blocks, nil
}

func fromAssistantContent(content []scenario.Content) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(content))
	for _, c := range content {
		switch c := c.(type) {
		case scenario.Text:
			blocks = append(blocks, anthropic.NewTextBlock(c.Text))
		case scenario.ToolCall:
			// input is the argument object itself, not its string encoding
			input := json.RawMessage(c.Arguments)
			if !json.Valid(input) {
				return nil, fmt.Errorf("tool call %s: arguments are not valid JSON", c.ID)
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, input, c.Name))
		default:
			return nil, fmt.Errorf("%T in assistant turn", c)
		}
	}
	return blocks, nil
}

func fromToolResults(content []scenario.Content) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(content))
	for _, c := range content {
		result, ok := c.(scenario.ToolResult)
		if !ok {
			return nil, fmt.Errorf("tool turns carry tool results only, got %T", c)
		}

		if isTextOnly(result.Content) {
			blocks = append(blocks, anthropic.NewToolResultBlock(result.CallID, textOf(result.Content), false))
			continue
		}

		parts := make([]anthropic.ToolResultBlockParamContentUnion, 0, len(result.Content))
		for _, item := range result.Content {
			switch item := item.(type) {
			case scenario.Text:
				parts = append(parts, anthropic.ToolResultBlockParamContentUnion{
					OfText: anthropic.NewTextBlock(item.Text).OfText,
				})
			case scenario.Image:
				parts = append(parts, anthropic.ToolResultBlockParamContentUnion{
					OfImage: fromImage(item).OfImage,
				})
			default:
				return nil, fmt.Errorf("tool result %s: %T", result.CallID, item)
			}
		}
		blocks = append(blocks, anthropic.ContentBlockParamUnion{
			OfToolResult: &anthropic.ToolResultBlockParam{
				ToolUseID: result.CallID,
				Content:   parts,
			},
		})
	}
	return blocks, nil
}

func fromImage(img scenario.Image) anthropic.ContentBlockParamUnion {
	if img.Encoding() == scenario.EncodingURL {
		return anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: img.URL})
	}
	return anthropic.NewImageBlockBase64(img.MediaType, img.Data)
}

func isTextOnly(content []scenario.Content) bool {
	return scenario.Turn{Content: content}.TextOnly()
}

func textOf(content []scenario.Content) string {
	return scenario.Turn{Content: content}.Text()
}
