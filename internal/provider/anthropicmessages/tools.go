package anthropicmessages

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/llmwire/internal/scenario"
)

// toTools converts tool declarations to Anthropic tools. The flat JSON
// schema is split into properties and required; every other schema keyword
// is preserved through ExtraFields.
func toTools(tools []scenario.Tool) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	anthropicTools := make([]anthropic.ToolUnionParam, 0, len(tools))
	for i, tool := range tools {
		toolParam := anthropic.ToolParam{
			Name:        tool.Name,
			InputSchema: anthropic.ToolInputSchemaParam{},
		}
		if tool.Description != "" {
			toolParam.Description = anthropic.String(tool.Description)
		}

		params := tool.Parameters
		if schemaType, ok := params["type"]; ok && schemaType != "object" {
			return nil, fmt.Errorf("tool %d (%s): input schema must be an object, got %v", i, tool.Name, schemaType)
		}
		if props, ok := params["properties"]; ok {
			toolParam.InputSchema.Properties = props
		}
		if req, ok := params["required"].([]any); ok {
			required := make([]string, 0, len(req))
			for _, r := range req {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
			toolParam.InputSchema.Required = required
		}

		var extraFields map[string]any
		for key, value := range params {
			if key == "type" || key == "properties" || key == "required" {
				continue
			}
			if extraFields == nil {
				extraFields = make(map[string]any)
			}
			extraFields[key] = value
		}
		toolParam.InputSchema.ExtraFields = extraFields

		anthropicTools = append(anthropicTools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return anthropicTools, nil
}

// toToolChoice maps the scenario tool choice; empty keeps the API default.
func toToolChoice(choice string) *anthropic.ToolChoiceUnionParam {
	switch choice {
	case "auto":
		return &anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	case "required", "any":
		return &anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	case "none":
		return &anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	default:
		return nil
	}
}
