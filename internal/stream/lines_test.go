package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, r io.Reader) ([]Frame, error) {
	t.Helper()
	var frames []Frame
	for f, err := range Lines(r) {
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func TestLinesDataOnly(t *testing.T) {
	input := "data: {\"a\":1}\n\ndata:{\"b\":2}\n\ndata: [DONE]\n\n"
	frames, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, Frame{Data: `{"a":1}`, Raw: `data: {"a":1}`}, frames[0])
	assert.Equal(t, Frame{Data: `{"b":2}`, Raw: `data:{"b":2}`}, frames[1])
	assert.True(t, frames[2].Done())
	assert.False(t, frames[0].Done())
}

func TestLinesNamedEvents(t *testing.T) {
	input := "event: message_start\r\ndata: {\"type\":\"message_start\"}\r\n\r\nevent: ping\ndata: {}\n\ndata: {\"x\":1}\n"
	frames, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, "message_start", frames[0].Event)
	assert.Equal(t, "event: message_start\ndata: {\"type\":\"message_start\"}", frames[0].Raw)
	assert.Equal(t, "ping", frames[1].Event)
	// Event names do not leak across the blank line.
	assert.Equal(t, "", frames[2].Event)
	assert.Equal(t, `data: {"x":1}`, frames[2].Raw)
}

func TestLinesSkipsCommentsAndKnownFields(t *testing.T) {
	input := ": keep-alive\nid: 7\nretry: 1000\n\ndata: ok\n"
	frames, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "ok", frames[0].Data)
}

func TestLinesMalformed(t *testing.T) {
	input := "data: {\"a\":1}\nthis is garbage\ndata: {\"b\":2}\n"
	frames, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.False(t, frames[0].Malformed)
	assert.True(t, frames[1].Malformed)
	assert.Equal(t, "this is garbage", frames[1].Raw)
	assert.False(t, frames[1].Done())
	assert.Equal(t, `{"b":2}`, frames[2].Data)
}

func TestLinesPartialLastLine(t *testing.T) {
	frames, err := collect(t, strings.NewReader("data: tail"))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "tail", frames[0].Data)
}

func TestLinesReadError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("data: first\n"), iotest.ErrReader(boom))

	frames, err := collect(t, r)
	require.ErrorIs(t, err, boom)
	require.Len(t, frames, 1)
}

func TestLinesStopsWhenConsumerStops(t *testing.T) {
	input := "data: 1\ndata: 2\ndata: 3\n"
	var seen []string
	for f, err := range Lines(strings.NewReader(input)) {
		require.NoError(t, err)
		seen = append(seen, f.Data)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, seen)
}
