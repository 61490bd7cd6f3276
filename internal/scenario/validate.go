package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks the structural rules of a scenario: tool calls appear in
// assistant turns and name a declared tool, their arguments satisfy the
// tool's parameter schema, and every tool result answers an earlier call.
func (s Scenario) Validate() error {
	calls := make(map[string]bool)
	for i, turn := range s.Turns {
		for j, item := range turn.Content {
			switch c := item.(type) {
			case ToolCall:
				if turn.Role != RoleAssistant {
					return fmt.Errorf("scenario %s: turn %d item %d: tool call in %s turn", s.Name, i, j, turn.Role)
				}
				tool, ok := s.Tool(c.Name)
				if !ok {
					return fmt.Errorf("scenario %s: turn %d: tool call %s names undeclared tool %q", s.Name, i, c.ID, c.Name)
				}
				if err := validateArguments(tool, c.Arguments); err != nil {
					return fmt.Errorf("scenario %s: turn %d: tool call %s: %w", s.Name, i, c.ID, err)
				}
				calls[c.ID] = true
			case ToolResult:
				if turn.Role != RoleTool {
					return fmt.Errorf("scenario %s: turn %d item %d: tool result in %s turn", s.Name, i, j, turn.Role)
				}
				if !calls[c.CallID] {
					return fmt.Errorf("scenario %s: turn %d: tool result for unknown call %q", s.Name, i, c.CallID)
				}
			case Image:
				if c.Data == "" && c.URL == "" {
					return fmt.Errorf("scenario %s: turn %d item %d: empty image", s.Name, i, j)
				}
			}
		}
	}
	return nil
}

// validateArguments compiles the tool's parameter schema and checks the
// JSON encoded arguments against it.
func validateArguments(tool Tool, arguments string) error {
	raw, err := json.Marshal(tool.Parameters)
	if err != nil {
		return fmt.Errorf("encode schema of %s: %w", tool.Name, err)
	}

	url := "mem://tools/" + tool.Name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("load schema of %s: %w", tool.Name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("compile schema of %s: %w", tool.Name, err)
	}

	dec := json.NewDecoder(strings.NewReader(arguments))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("arguments do not match schema of %s: %w", tool.Name, err)
	}
	return nil
}
