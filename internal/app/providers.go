package app

import (
	"fmt"

	"github.com/florianilch/llmwire/internal/config"
	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/provider/anthropicmessages"
	"github.com/florianilch/llmwire/internal/provider/openaichat"
	"github.com/florianilch/llmwire/internal/provider/openairesponses"
	"github.com/florianilch/llmwire/internal/stream"
)

// newProvider returns the adapter for name, pointed at the configured base URL.
func newProvider(name provider.Name, cfg *config.Config) (provider.Provider, error) {
	baseURL := cfg.BaseURL(name.Vendor())
	switch name {
	case provider.OpenAIChat:
		return openaichat.New(baseURL), nil
	case provider.OpenAIResponses:
		return openairesponses.New(baseURL), nil
	case provider.Anthropic:
		return anthropicmessages.New(baseURL), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// stopReason returns why the response ended, for events that say so.
func stopReason(ev stream.Event) (string, bool) {
	switch e := ev.(type) {
	case openaichat.Chunk:
		for _, choice := range e.Completion.Choices {
			if choice.FinishReason != "" {
				return string(choice.FinishReason), true
			}
		}
	case anthropicmessages.Event:
		if reason := e.StopReason(); reason != "" {
			return string(reason), true
		}
	case openairesponses.Event:
		if e.Type == openairesponses.TypeCompleted {
			return "completed", true
		}
	case openairesponses.Failure:
		if e.Type == openairesponses.TypeIncomplete {
			return e.Message, true
		}
	}
	return "", false
}

// milestone names Responses lifecycle events worth a debug line.
func milestone(ev stream.Event) (string, bool) {
	e, ok := ev.(openairesponses.Event)
	if !ok {
		return "", false
	}
	switch e.Type {
	case openairesponses.TypeCreated:
		return "response created", true
	case openairesponses.TypeOutputTextDone:
		return "output text done", true
	default:
		return "", false
	}
}
