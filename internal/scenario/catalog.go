package scenario

import (
	"errors"
	"fmt"
	"slices"
)

// Name identifies a scenario in the catalog.
type Name string

const (
	SimpleChat   Name = "simple_chat"
	ImageInput   Name = "image_input"
	ToolCallName Name = "tool_call"
	ToolResponse Name = "tool_response"
	ImageInTool  Name = "image_in_tool"
)

// Image files used by the catalog, relative to the images directory.
const (
	TiresImage = "tires.jpeg"
	PlotImage  = "plot.png"
)

// ErrUnknown is returned for scenario names that are not in the catalog.
var ErrUnknown = errors.New("unknown scenario")

// ErrMissingImage is returned when a scenario is built without an image it requires.
var ErrMissingImage = errors.New("missing image")

// Images holds loaded images keyed by file name.
type Images map[string]Image

// Names returns all catalog names in presentation order.
func Names() []Name {
	return []Name{SimpleChat, ImageInput, ToolCallName, ToolResponse, ImageInTool}
}

// ParseName validates a scenario name.
func ParseName(s string) (Name, error) {
	n := Name(s)
	if !slices.Contains(Names(), n) {
		return "", fmt.Errorf("%w %q (expected one of %v)", ErrUnknown, s, Names())
	}
	return n, nil
}

// Describe returns a one-line summary of the named scenario.
func Describe(n Name) string {
	switch n {
	case SimpleChat:
		return "instruction plus a single user message"
	case ImageInput:
		return "user text with an inline JPEG image"
	case ToolCallName:
		return "user question with a weather tool available"
	case ToolResponse:
		return "completed weather tool call and its JSON result"
	case ImageInTool:
		return "chart tool call whose result contains a PNG image"
	default:
		return ""
	}
}

// Requires returns the image files the named scenario needs.
func Requires(n Name) []string {
	switch n {
	case ImageInput:
		return []string{TiresImage}
	case ImageInTool:
		return []string{PlotImage}
	default:
		return nil
	}
}

const (
	weatherInstruction = "You are a helpful assistant with access to weather information."
	weatherQuestion    = "What's the weather like in San Francisco?"
)

// Build returns the named scenario. Images must contain every file
// reported by Requires for that name.
func Build(n Name, images Images) (Scenario, error) {
	for _, file := range Requires(n) {
		if img, ok := images[file]; !ok || (img.Data == "" && img.URL == "") {
			return Scenario{}, fmt.Errorf("scenario %s: %w %s", n, ErrMissingImage, file)
		}
	}

	var s Scenario
	switch n {
	case SimpleChat:
		s = Scenario{
			Turns: []Turn{
				{Role: RoleInstruction, Content: []Content{Text{Text: "You are a helpful assistant that provides concise answers."}}},
				{Role: RoleUser, Content: []Content{Text{Text: "Tell me a haiku."}}},
			},
		}
	case ImageInput:
		s = Scenario{
			Turns: []Turn{
				{Role: RoleUser, Content: []Content{
					Text{Text: "What do you see in this image?"},
					images[TiresImage],
				}},
			},
			MaxTokens: 300,
		}
	case ToolCallName:
		s = Scenario{
			Turns: []Turn{
				{Role: RoleInstruction, Content: []Content{Text{Text: weatherInstruction}}},
				{Role: RoleUser, Content: []Content{Text{Text: weatherQuestion}}},
			},
			Tools:      []Tool{weatherTool(true)},
			ToolChoice: "auto",
		}
	case ToolResponse:
		s = Scenario{
			Turns: []Turn{
				{Role: RoleInstruction, Content: []Content{Text{Text: weatherInstruction}}},
				{Role: RoleUser, Content: []Content{Text{Text: weatherQuestion}}},
				{Role: RoleAssistant, Content: []Content{ToolCall{
					ID:        "call_abc123",
					Name:      "get_weather",
					Arguments: `{"location": "San Francisco, CA", "unit": "fahrenheit"}`,
				}}},
				{Role: RoleTool, Content: []Content{ToolResult{
					CallID:  "call_abc123",
					Content: []Content{Text{Text: `{"temperature": 72, "condition": "sunny", "humidity": 65}`}},
				}}},
			},
			Tools: []Tool{weatherTool(false)},
		}
	case ImageInTool:
		s = Scenario{
			Turns: []Turn{
				{Role: RoleInstruction, Content: []Content{Text{Text: "You are a helpful assistant that can generate and analyze charts."}}},
				{Role: RoleUser, Content: []Content{Text{Text: "Create a bar chart showing sales data and describe it to me. Don't send the image back to me."}}},
				{Role: RoleAssistant, Content: []Content{ToolCall{
					ID:        "call_chart123",
					Name:      "generate_chart",
					Arguments: `{"chart_type": "bar", "data": [10, 20, 30, 40]}`,
				}}},
				{Role: RoleTool, Content: []Content{ToolResult{
					CallID: "call_chart123",
					Content: []Content{
						Text{Text: "Chart generated successfully:"},
						images[PlotImage],
					},
				}}},
			},
			Tools: []Tool{chartTool()},
		}
	default:
		return Scenario{}, fmt.Errorf("%w %q", ErrUnknown, n)
	}
	s.Name = n

	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

func weatherTool(described bool) Tool {
	location := map[string]any{"type": "string"}
	unit := map[string]any{"type": "string", "enum": []any{"celsius", "fahrenheit"}}
	if described {
		location["description"] = "The city and state, e.g. San Francisco, CA"
		unit["description"] = "The temperature unit"
	}
	return Tool{
		Name:        "get_weather",
		Description: "Get the current weather in a given location",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"location": location,
				"unit":     unit,
			},
			"required": []any{"location"},
		},
	}
}

func chartTool() Tool {
	return Tool{
		Name:        "generate_chart",
		Description: "Generate a chart and return the image",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"chart_type": map[string]any{"type": "string"},
				"data":       map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
			},
			"required": []any{"chart_type", "data"},
		},
	}
}
