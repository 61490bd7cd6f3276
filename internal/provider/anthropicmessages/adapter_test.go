package anthropicmessages_test

import (
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/provider/anthropicmessages"
	"github.com/florianilch/llmwire/internal/scenario"
	"github.com/florianilch/llmwire/internal/stream"
)

const model = "claude-sonnet-4-5-20250929"

var images = scenario.Images{
	scenario.TiresImage: {MediaType: "image/jpeg", Data: "/9j/4AAQ"},
	scenario.PlotImage:  {MediaType: "image/png", Data: "iVBORw0K"},
}

func build(t *testing.T, name scenario.Name) gjson.Result {
	t.Helper()
	s, err := scenario.Build(name, images)
	require.NoError(t, err)

	payload, err := anthropicmessages.New("").BuildPayload(s, model)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(payload.Body), "payload is not valid JSON: %s", payload.Body)
	return gjson.ParseBytes(payload.Body)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.anthropic.com/v1/messages", anthropicmessages.New("").Endpoint())
}

func TestBuildPayload(t *testing.T) {
	t.Run("simple chat", func(t *testing.T) {
		body := build(t, scenario.SimpleChat)

		assert.Equal(t, model, body.Get("model").String())
		assert.Equal(t, int64(anthropicmessages.DefaultMaxTokens), body.Get("max_tokens").Int())
		assert.Equal(t, "You are a helpful assistant that provides concise answers.", body.Get("system").String())
		assert.True(t, body.Get("stream").Bool())
		assert.False(t, body.Get("tool_choice").Exists())

		msgs := body.Get("messages").Array()
		require.Len(t, msgs, 1)
		assert.Equal(t, "user", msgs[0].Get("role").String())
		assert.Equal(t, "text", msgs[0].Get("content.0.type").String())
		assert.Equal(t, "Tell me a haiku.", msgs[0].Get("content.0.text").String())
	})

	t.Run("image input", func(t *testing.T) {
		body := build(t, scenario.ImageInput)

		assert.False(t, body.Get("system").Exists())
		assert.Equal(t, int64(300), body.Get("max_tokens").Int())
		image := body.Get("messages.0.content.1")
		assert.Equal(t, "image", image.Get("type").String())
		assert.Equal(t, "base64", image.Get("source.type").String())
		assert.Equal(t, "image/jpeg", image.Get("source.media_type").String())
		assert.Equal(t, "/9j/4AAQ", image.Get("source.data").String())
	})

	t.Run("tool call", func(t *testing.T) {
		body := build(t, scenario.ToolCallName)

		assert.Equal(t, "auto", body.Get("tool_choice.type").String())
		tool := body.Get("tools.0")
		assert.Equal(t, "get_weather", tool.Get("name").String())
		assert.Equal(t, "object", tool.Get("input_schema.type").String())
		assert.Equal(t, "string", tool.Get("input_schema.properties.location.type").String())
		assert.Equal(t, `["location"]`, tool.Get("input_schema.required").Raw)
	})

	t.Run("tool response", func(t *testing.T) {
		body := build(t, scenario.ToolResponse)

		msgs := body.Get("messages").Array()
		require.Len(t, msgs, 3)

		toolUse := msgs[1].Get("content.0")
		assert.Equal(t, "assistant", msgs[1].Get("role").String())
		assert.Equal(t, "tool_use", toolUse.Get("type").String())
		assert.Equal(t, "call_abc123", toolUse.Get("id").String())
		assert.True(t, toolUse.Get("input").IsObject())
		assert.Equal(t, "San Francisco, CA", toolUse.Get("input.location").String())

		toolResult := msgs[2].Get("content.0")
		assert.Equal(t, "user", msgs[2].Get("role").String())
		assert.Equal(t, "tool_result", toolResult.Get("type").String())
		assert.Equal(t, "call_abc123", toolResult.Get("tool_use_id").String())
		assert.Contains(t, toolResult.Get("content").Raw, "temperature")
	})

	t.Run("image in tool result", func(t *testing.T) {
		body := build(t, scenario.ImageInTool)

		content := body.Get("messages.2.content.0.content").Array()
		require.Len(t, content, 2)
		assert.Equal(t, "text", content[0].Get("type").String())
		assert.Equal(t, "Chart generated successfully:", content[0].Get("text").String())
		assert.Equal(t, "image", content[1].Get("type").String())
		assert.Equal(t, "image/png", content[1].Get("source.media_type").String())
		assert.Equal(t, "iVBORw0K", content[1].Get("source.data").String())
	})
}

func TestBuildPayloadMergesToolResults(t *testing.T) {
	result := func(id string) scenario.Turn {
		return scenario.Turn{Role: scenario.RoleTool, Content: []scenario.Content{scenario.ToolResult{
			CallID:  id,
			Content: []scenario.Content{scenario.Text{Text: "ok"}},
		}}}
	}
	s := scenario.Scenario{
		Name: "custom",
		Turns: []scenario.Turn{
			{Role: scenario.RoleUser, Content: []scenario.Content{scenario.Text{Text: "do both"}}},
			{Role: scenario.RoleAssistant, Content: []scenario.Content{
				scenario.ToolCall{ID: "a", Name: "f", Arguments: `{}`},
				scenario.ToolCall{ID: "b", Name: "f", Arguments: `{}`},
			}},
			result("a"),
			result("b"),
		},
	}

	payload, err := anthropicmessages.New("").BuildPayload(s, model)
	require.NoError(t, err)

	msgs := gjson.GetBytes(payload.Body, "messages").Array()
	require.Len(t, msgs, 3)
	assert.Equal(t, "a", msgs[2].Get("content.0.tool_use_id").String())
	assert.Equal(t, "b", msgs[2].Get("content.1.tool_use_id").String())
}

func TestBuildPayloadUnsupported(t *testing.T) {
	s := scenario.Scenario{
		Name: "custom",
		Turns: []scenario.Turn{
			{Role: scenario.RoleAssistant, Content: []scenario.Content{scenario.ToolCall{ID: "a", Name: "f", Arguments: `{broken`}}},
		},
	}

	_, err := anthropicmessages.New("").BuildPayload(s, model)

	var cfgErr *provider.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, provider.Anthropic, cfgErr.Provider)
}

func TestDecode(t *testing.T) {
	f, err := os.Open("testdata/haiku.sse")
	require.NoError(t, err)
	defer f.Close()

	adapter := anthropicmessages.New("")
	var events []stream.Event
	for ev := range adapter.Decode(f) {
		events = append(events, ev)
	}

	require.Len(t, events, 8)
	types := make([]string, len(events))
	for i, ev := range events {
		e, ok := ev.(anthropicmessages.Event)
		require.True(t, ok, "event %d is %T", i, ev)
		types[i] = e.Type
	}
	assert.Equal(t, []string{
		"message_start", "content_block_start", "ping", "content_block_delta",
		"content_block_delta", "content_block_stop", "message_delta", "message_stop",
	}, types)

	assert.Equal(t, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Morning\"}}", events[3].Raw())
	assert.Equal(t, anthropic.StopReasonEndTurn, events[6].(anthropicmessages.Event).StopReason())
	assert.Equal(t, "Morning dew", stream.Fold(slices.Values(events), adapter.Text))
}

func TestDecodeStopsAtMessageStop(t *testing.T) {
	input := strings.Join([]string{
		"event: message_stop",
		`data: {"type":"message_stop"}`,
		"",
		"event: content_block_delta",
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"late"}}`,
	}, "\n")

	var events []stream.Event
	for ev := range anthropicmessages.New("").Decode(strings.NewReader(input)) {
		events = append(events, ev)
	}
	require.Len(t, events, 1)
}

func TestDecodeUnknownAndErrors(t *testing.T) {
	input := strings.Join([]string{
		"event: content_block_delta",
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"A"}}`,
		"",
		"event: future_event",
		`data: {"type":"future_event","payload":1}`,
		"",
		"event: content_block_delta",
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"loc"}}`,
		"",
		"event: error",
		`data: {"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
		"",
		`data: {truncated`,
		"",
		"event: content_block_delta",
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"B"}}`,
	}, "\n")

	adapter := anthropicmessages.New("")
	var events []stream.Event
	for ev := range adapter.Decode(strings.NewReader(input)) {
		events = append(events, ev)
	}

	require.Len(t, events, 6)

	unknown, ok := events[1].(stream.Unknown)
	require.True(t, ok)
	assert.Equal(t, "future_event", unknown.Type)
	assert.Equal(t, "event: future_event\ndata: {\"type\":\"future_event\",\"payload\":1}", unknown.Raw())

	failure, ok := events[3].(anthropicmessages.Failure)
	require.True(t, ok)
	assert.Equal(t, "overloaded_error: Overloaded", failure.Error())

	assert.IsType(t, stream.DecodeError{}, events[4])
	assert.Equal(t, "AB", stream.Fold(slices.Values(events), adapter.Text))
}
