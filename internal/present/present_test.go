package present

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/stream"
)

var longBase64 = strings.Repeat("iVBORw0KGgo=", 30)

func TestRenderPayload(t *testing.T) {
	t.Run("keeps key order and indents", func(t *testing.T) {
		out, err := RenderPayload([]byte(`{"model":"gpt-4o","stream":true,"max_tokens":300}`))
		require.NoError(t, err)

		assert.Equal(t, `{
  "model": "gpt-4o",
  "stream": true,
  "max_tokens": 300
}`, string(out))
	})

	t.Run("truncates data URIs", func(t *testing.T) {
		body := `{"url":"data:image/png;base64,` + longBase64 + `"}`

		out, err := RenderPayload([]byte(body))
		require.NoError(t, err)

		url := gjson.GetBytes(out, "url").String()
		assert.Equal(t, "data:image/png;base64,"+longBase64[:100]+"... [truncated 360 chars]", url)
	})

	t.Run("truncates bare base64", func(t *testing.T) {
		out, err := RenderPayload([]byte(`{"source":{"type":"base64","data":"` + longBase64 + `"}}`))
		require.NoError(t, err)

		assert.Equal(t, longBase64[:100]+"... [truncated 360 chars]", gjson.GetBytes(out, "source.data").String())
		assert.Equal(t, "base64", gjson.GetBytes(out, "source.type").String())
	})

	t.Run("leaves short and prose strings alone", func(t *testing.T) {
		prose := strings.Repeat("The quick brown fox. ", 20)
		body := `{"a":"data:image/png;base64,AAAA","b":"` + prose + `"}`

		out, err := RenderPayload([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,AAAA", gjson.GetBytes(out, "a").String())
		assert.Equal(t, prose, gjson.GetBytes(out, "b").String())
	})

	t.Run("truncates inside serialized JSON strings", func(t *testing.T) {
		inner := `{"image_base64":"` + longBase64 + `","mime_type":"image/png"}`
		body := `{"content":` + string(quote(inner)) + `}`

		out, err := RenderPayload([]byte(body))
		require.NoError(t, err)

		content := gjson.GetBytes(out, "content").String()
		require.True(t, gjson.Valid(content), content)
		assert.Contains(t, gjson.Get(content, "image_base64").String(), "... [truncated 360 chars]")
		assert.Equal(t, "image/png", gjson.Get(content, "mime_type").String())
	})

	t.Run("is idempotent", func(t *testing.T) {
		inner := `{"image_base64":"` + longBase64 + `"}`
		body := `{"a":"data:image/jpeg;base64,` + longBase64 + `","b":"` + longBase64 + `","c":` + string(quote(inner)) + `}`

		once, err := RenderPayload([]byte(body))
		require.NoError(t, err)
		twice, err := RenderPayload(once)
		require.NoError(t, err)
		assert.Equal(t, string(once), string(twice))
	})

	t.Run("does not modify its input", func(t *testing.T) {
		body := []byte(`{"data":"` + longBase64 + `"}`)
		orig := bytes.Clone(body)

		_, err := RenderPayload(body)
		require.NoError(t, err)
		assert.Equal(t, orig, body)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, err := RenderPayload([]byte(`{"a":`))
		assert.Error(t, err)
	})
}

func TestParseColorMode(t *testing.T) {
	mode, err := ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ColorAuto, mode)

	mode, err = ParseColorMode("never")
	require.NoError(t, err)
	assert.False(t, mode.Enabled(&bytes.Buffer{}))
	assert.True(t, ColorAlways.Enabled(&bytes.Buffer{}))
	assert.False(t, ColorAuto.Enabled(&bytes.Buffer{}))

	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}

func frame(raw string) stream.Frame {
	f := stream.Frame{Raw: raw}
	for _, line := range strings.Split(raw, "\n") {
		if v, ok := strings.CutPrefix(line, "event: "); ok {
			f.Event = v
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			f.Data = v
		}
	}
	return f
}

func TestPresenterRawEvents(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, Options{})

	raw := "event: ping\ndata: {\"type\": \"ping\"}"
	p.Event(stream.Unknown{Base: stream.NewBase(frame(raw)), Type: "ping"})

	assert.Equal(t, raw+"\n", out.String())
}

func TestPresenterPrettyEvents(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, Options{Pretty: true})

	p.Event(stream.Unknown{Base: stream.NewBase(frame("event: ping\ndata: {\"type\":\"ping\"}")), Type: "ping"})

	assert.Equal(t, "event: ping\n{\n  \"type\": \"ping\"\n}\n", out.String())
}

func TestPresenterDecodeErrors(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var out bytes.Buffer
		p := New(&out, Options{Pretty: pretty})

		p.Event(stream.NewDecodeError(frame("data: {oops"), errors.New("invalid JSON")))
		p.Event(stream.NewDecodeError(stream.Frame{}, errors.New("connection reset")))

		assert.Equal(t, "data: {oops\n! decode error: invalid JSON\n! stream error: connection reset\n", out.String())
	}
}

func TestPresenterPayload(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, Options{})

	err := p.Payload(provider.Payload{Provider: provider.Anthropic, Body: []byte(`{"model":"m"}`)}, "https://api.anthropic.com/v1/messages")
	require.NoError(t, err)

	rule := strings.Repeat("=", 60)
	assert.Equal(t, "\n"+rule+"\nAnthropic Messages Request Payload\n"+rule+"\nPOST https://api.anthropic.com/v1/messages\n{\n  \"model\": \"m\"\n}\n\n", out.String())
}

func TestPresenterComplete(t *testing.T) {
	t.Run("with text", func(t *testing.T) {
		var out bytes.Buffer
		New(&out, Options{}).Complete("Autumn leaves fall")

		s := out.String()
		assert.Contains(t, s, "Stream complete.")
		assert.Contains(t, s, "Accumulated Text Response")
		assert.Contains(t, s, "\nAutumn leaves fall\n")
	})

	t.Run("without text", func(t *testing.T) {
		var out bytes.Buffer
		New(&out, Options{}).Complete("")

		assert.Equal(t, "\nStream complete.\n\n", out.String())
	})
}

func TestPresenterColor(t *testing.T) {
	var out bytes.Buffer
	New(&out, Options{Color: true}).StreamStart()

	assert.Contains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "Streaming Response")
}

func TestPresenterColoredRawEventsKeepLines(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, Options{Color: true})

	p.Event(stream.Unknown{Base: stream.NewBase(frame("event: ping\ndata: {\"type\": \"ping\"}")), Type: "ping"})

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "event: ping")
	assert.NotContains(t, lines[0], "ping ", "lines must not be padded to a common width")
	assert.Contains(t, lines[1], `data: {"type": "ping"}`)
}
