package anthropicmessages

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/tidwall/gjson"

	"github.com/florianilch/llmwire/internal/stream"
)

// Stream event types.
const (
	TypeMessageStart      = "message_start"
	TypeContentBlockStart = "content_block_start"
	TypeContentBlockDelta = "content_block_delta"
	TypeContentBlockStop  = "content_block_stop"
	TypeMessageDelta      = "message_delta"
	TypeMessageStop       = "message_stop"
	TypePing              = "ping"
	TypeError             = "error"
)

var (
	errInvalidJSON = errors.New("invalid JSON")
	errMissingType = errors.New(`event has no "type"`)
)

// Event is a recognized Messages stream event.
type Event struct {
	stream.Base
	Type    string
	Message anthropic.MessageStreamEventUnion
}

// StopReason returns the stop reason announced by a message_delta event.
func (e Event) StopReason() anthropic.StopReason {
	if delta, ok := e.Message.AsAny().(anthropic.MessageDeltaEvent); ok {
		return delta.Delta.StopReason
	}
	return ""
}

// Failure is an in-stream "error" event, e.g. overloaded_error.
type Failure struct {
	stream.Base
	Err anthropic.ErrorResponse
}

// Error implements the error interface.
func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Err.Error.Type, f.Err.Error.Message)
}

// Decode implements provider.Provider. The sequence ends after message_stop
// or at EOF.
func (a *Adapter) Decode(r io.Reader) iter.Seq[stream.Event] {
	return stream.Decode(r, decodeFrame)
}

func decodeFrame(frame stream.Frame) (stream.Event, bool) {
	if frame.Malformed {
		return stream.NewDecodeError(frame, stream.ErrMalformedLine), false
	}
	if !gjson.Valid(frame.Data) || !gjson.Parse(frame.Data).IsObject() {
		return stream.NewDecodeError(frame, errInvalidJSON), false
	}

	typ := gjson.Get(frame.Data, "type").String()
	if typ == "" {
		typ = frame.Event
	}

	switch typ {
	case "":
		return stream.NewDecodeError(frame, errMissingType), false

	case TypeError:
		errorResp, err := parseErrorResponseJSON(frame.Data)
		if err != nil {
			return stream.NewDecodeError(frame, err), false
		}
		return Failure{Base: stream.NewBase(frame), Err: *errorResp}, false

	case TypeMessageStart, TypeContentBlockStart, TypeContentBlockDelta, TypeContentBlockStop,
		TypeMessageDelta, TypeMessageStop, TypePing:
		var msg anthropic.MessageStreamEventUnion
		if err := json.Unmarshal([]byte(frame.Data), &msg); err != nil {
			return stream.NewDecodeError(frame, err), false
		}
		return Event{Base: stream.NewBase(frame), Type: typ, Message: msg}, typ == TypeMessageStop

	default:
		return stream.Unknown{Base: stream.NewBase(frame), Type: typ}, false
	}
}

// parseErrorResponseJSON parses an Anthropic error body. Streaming error
// events and non-2xx response bodies share this shape.
func parseErrorResponseJSON(jsonStr string) (*anthropic.ErrorResponse, error) {
	var errorResp anthropic.ErrorResponse
	if err := json.Unmarshal([]byte(jsonStr), &errorResp); err != nil {
		return nil, fmt.Errorf("parse error response: %w", err)
	}
	return &errorResp, nil
}
