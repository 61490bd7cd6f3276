package provider_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/provider/anthropicmessages"
	"github.com/florianilch/llmwire/internal/provider/openaichat"
	"github.com/florianilch/llmwire/internal/provider/openairesponses"
	"github.com/florianilch/llmwire/internal/scenario"
)

// TestImageBytesSurviveEveryFormat builds image_input from arbitrary binary
// bytes and checks each wire format carries exactly those bytes.
func TestImageBytesSurviveEveryFormat(t *testing.T) {
	original := make([]byte, 0, 1024)
	original = append(original, 0xff, 0xd8, 0xff, 0xe0)
	for i := range 1020 {
		original = append(original, byte(i*31+7))
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, scenario.TiresImage), original, 0o600))
	images, err := scenario.LoadImages(dir, scenario.Requires(scenario.ImageInput))
	require.NoError(t, err)
	s, err := scenario.Build(scenario.ImageInput, images)
	require.NoError(t, err)

	dataURI := func(uri string) string {
		data, ok := strings.CutPrefix(uri, "data:image/jpeg;base64,")
		require.True(t, ok, "unexpected image URL %.40q", uri)
		return data
	}

	tests := []struct {
		adapter provider.Provider
		encoded func(body gjson.Result) string
	}{
		{
			adapter: openaichat.New(""),
			encoded: func(body gjson.Result) string {
				return dataURI(body.Get("messages.0.content.1.image_url.url").String())
			},
		},
		{
			adapter: openairesponses.New(""),
			encoded: func(body gjson.Result) string {
				return dataURI(body.Get("input.0.content.1.image_url").String())
			},
		},
		{
			adapter: anthropicmessages.New(""),
			encoded: func(body gjson.Result) string {
				assert.Equal(t, "image/jpeg", body.Get("messages.0.content.1.source.media_type").String())
				return body.Get("messages.0.content.1.source.data").String()
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.adapter.Name()), func(t *testing.T) {
			payload, err := tt.adapter.BuildPayload(s, "model")
			require.NoError(t, err)

			decoded, err := base64.StdEncoding.DecodeString(tt.encoded(gjson.ParseBytes(payload.Body)))
			require.NoError(t, err)
			assert.Equal(t, original, decoded)
		})
	}
}
