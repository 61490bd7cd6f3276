package provider

import (
	"fmt"
	"strings"
)

// Stages of a run, used to give configuration errors context.
const (
	StageCLI      = "cli"
	StageAuth     = "auth"
	StageImages   = "images"
	StageScenario = "scenario"
	StagePayload  = "payload"
)

// ConfigurationError reports input that prevents a run from starting:
// unknown names, missing credentials or files, or scenario content the
// selected wire format cannot express. It is always fatal and always
// raised before any network activity.
type ConfigurationError struct {
	Stage    string
	Provider Name
	Scenario string
	Err      error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	var ctx []string
	if e.Stage != "" {
		ctx = append(ctx, "stage="+e.Stage)
	}
	if e.Provider != "" {
		ctx = append(ctx, "provider="+string(e.Provider))
	}
	if e.Scenario != "" {
		ctx = append(ctx, "scenario="+e.Scenario)
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error (%s): %v", strings.Join(ctx, " "), e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Unsupported builds the payload-stage error for content a wire format cannot express.
func Unsupported(p Name, scenarioName string, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Stage:    StagePayload,
		Provider: p,
		Scenario: scenarioName,
		Err:      fmt.Errorf("unsupported content: "+format, args...),
	}
}
