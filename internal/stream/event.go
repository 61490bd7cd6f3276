package stream

import (
	"errors"
	"fmt"
)

// Event is one decoded unit of a provider stream. Implementations embed
// Base, which keeps the set of variants closed to this module.
type Event interface {
	// Raw returns the exact lines the event was decoded from.
	Raw() string
	// Data returns the payload of the "data:" field.
	Data() []byte

	isEvent()
}

// Base carries the frame an event was decoded from.
type Base struct {
	Frame Frame
}

// NewBase wraps a frame for embedding in a provider event.
func NewBase(f Frame) Base {
	return Base{Frame: f}
}

// Raw implements Event.
func (b Base) Raw() string { return b.Frame.Raw }

// Data implements Event.
func (b Base) Data() []byte { return []byte(b.Frame.Data) }

// Name returns the SSE event name, empty for unnamed events.
func (b Base) Name() string { return b.Frame.Event }

func (Base) isEvent() {}

// DecodeError is a frame that could not be decoded. It is rendered like any
// other event and never contributes text.
type DecodeError struct {
	Base
	Err error
}

// NewDecodeError builds a DecodeError for f.
func NewDecodeError(f Frame, err error) DecodeError {
	return DecodeError{Base: NewBase(f), Err: err}
}

// Error implements the error interface.
func (e DecodeError) Error() string {
	if e.Frame.Raw == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %q: %v", e.Frame.Raw, e.Err)
}

// Unwrap returns the underlying decode failure.
func (e DecodeError) Unwrap() error { return e.Err }

// Unknown is a well-formed event whose type the decoder does not recognize.
type Unknown struct {
	Base
	Type string
}

// ErrMalformedLine is the cause of DecodeError events built from lines that
// are not server-sent event fields.
var ErrMalformedLine = errors.New("not a server-sent event field")
