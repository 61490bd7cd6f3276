package openaichat

import (
	"fmt"

	"github.com/openai/openai-go"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/scenario"
)

// chatCompletionRequest is the streaming request body. openai-go builds the
// body inside its client; the demo needs the bytes, so the envelope is local
// and the message and tool unions come from the SDK.
type chatCompletionRequest struct {
	Model         string                                   `json:"model"`
	Messages      []openai.ChatCompletionMessageParamUnion `json:"messages"`
	Tools         []openai.ChatCompletionToolParam         `json:"tools,omitempty"`
	ToolChoice    string                                   `json:"tool_choice,omitempty"`
	MaxTokens     int64                                    `json:"max_tokens,omitempty"`
	Stream        bool                                     `json:"stream"`
	StreamOptions streamOptions                            `json:"stream_options"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// BuildPayload implements provider.Provider.
func (a *Adapter) BuildPayload(s scenario.Scenario, model string) (provider.Payload, error) {
	messages, err := toMessages(s)
	if err != nil {
		return provider.Payload{}, err
	}

	req := chatCompletionRequest{
		Model:         model,
		Messages:      messages,
		Tools:         toTools(s.Tools),
		ToolChoice:    s.ToolChoice,
		MaxTokens:     s.MaxTokens,
		Stream:        true,
		StreamOptions: streamOptions{IncludeUsage: true},
	}
	return provider.Marshal(provider.OpenAIChat, model, req)
}

func toMessages(s scenario.Scenario) ([]openai.ChatCompletionMessageParamUnion, error) {
	unsupported := func(format string, args ...any) error {
		return provider.Unsupported(provider.OpenAIChat, string(s.Name), format, args...)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(s.Turns))
	for i, turn := range s.Turns {
		switch turn.Role {
		case scenario.RoleInstruction:
			if !turn.TextOnly() {
				return nil, unsupported("turn %d: instructions must be text", i)
			}
			messages = append(messages, openai.DeveloperMessage(turn.Text()))

		case scenario.RoleUser:
			msg, err := userMessage(turn)
			if err != nil {
				return nil, unsupported("turn %d: %v", i, err)
			}
			messages = append(messages, msg)

		case scenario.RoleAssistant:
			msg, err := assistantMessage(turn)
			if err != nil {
				return nil, unsupported("turn %d: %v", i, err)
			}
			messages = append(messages, msg)

		case scenario.RoleTool:
			for _, c := range turn.Content {
				result, ok := c.(scenario.ToolResult)
				if !ok {
					return nil, unsupported("turn %d: tool turns carry tool results only, got %T", i, c)
				}
				output, err := provider.ToolOutputText(result)
				if err != nil {
					return nil, unsupported("turn %d: %v", i, err)
				}
				messages = append(messages, openai.ToolMessage(output, result.CallID))
			}

		default:
			return nil, unsupported("turn %d: unknown role %q", i, turn.Role)
		}
	}
	return messages, nil
}

func userMessage(turn scenario.Turn) (openai.ChatCompletionMessageParamUnion, error) {
	if turn.TextOnly() {
		return openai.UserMessage(turn.Text()), nil
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(turn.Content))
	for _, c := range turn.Content {
		switch c := c.(type) {
		case scenario.Text:
			parts = append(parts, openai.TextContentPart(c.Text))
		case scenario.Image:
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: c.DataURI(),
			}))
		default:
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("%T in user turn", c)
		}
	}
	return openai.UserMessage(parts), nil
}

func assistantMessage(turn scenario.Turn) (openai.ChatCompletionMessageParamUnion, error) {
	if turn.TextOnly() {
		return openai.AssistantMessage(turn.Text()), nil
	}

	var toolCalls []openai.ChatCompletionMessageToolCallParam
	for _, c := range turn.Content {
		call, ok := c.(scenario.ToolCall)
		if !ok {
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("%T mixed with tool calls in assistant turn", c)
		}
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   call.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
		Role:      "assistant",
		ToolCalls: toolCalls,
	}}, nil
}

func toTools(tools []scenario.Tool) []openai.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}
	params := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		params[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		}
	}
	return params
}
