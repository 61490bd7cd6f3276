package stream

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
)

// textEvent is a minimal provider event used to drive the accumulator.
type textEvent struct {
	Base
	text string
}

func textOf(ev Event) (string, bool) {
	te, ok := ev.(textEvent)
	if !ok {
		return "", false
	}
	return te.text, true
}

func events(evs ...Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range evs {
			if !yield(ev) {
				return
			}
		}
	}
}

func TestAccumulatorKeepsArrivalOrder(t *testing.T) {
	acc := NewAccumulator(textOf)

	fragment, ok := acc.Add(textEvent{text: "Hello"})
	assert.True(t, ok)
	assert.Equal(t, "Hello", fragment)

	_, ok = acc.Add(Unknown{Type: "ping"})
	assert.False(t, ok)

	_, ok = acc.Add(textEvent{text: ""})
	assert.False(t, ok)

	acc.Add(textEvent{text: ", world"})

	assert.Equal(t, "Hello, world", acc.String())
	assert.Equal(t, 2, acc.Fragments())
}

func TestAccumulatorSkipsDecodeErrors(t *testing.T) {
	called := 0
	acc := NewAccumulator(func(ev Event) (string, bool) {
		called++
		return "x", true
	})

	_, ok := acc.Add(NewDecodeError(Frame{Raw: "garbage", Malformed: true}, ErrMalformedLine))
	assert.False(t, ok)
	assert.Zero(t, called)
	assert.Empty(t, acc.String())
}

func TestFold(t *testing.T) {
	text := Fold(events(
		textEvent{text: "a"},
		NewDecodeError(Frame{Raw: "data: {"}, errors.New("bad json")),
		textEvent{text: "b"},
		textEvent{text: "c"},
	), textOf)
	assert.Equal(t, "abc", text)
}

func TestDecodeErrorMessage(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewDecodeError(Frame{Raw: "data: {"}, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `decode "data: {": unexpected end of JSON input`, err.Error())
	assert.Equal(t, "decode: unexpected end of JSON input", NewDecodeError(Frame{}, cause).Error())
}
