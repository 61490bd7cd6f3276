package openairesponses

import (
	"errors"
	"io"
	"iter"

	"github.com/tidwall/gjson"

	"github.com/florianilch/llmwire/internal/stream"
)

// Event types the decoder gives meaning to. Every other type is still
// decoded into an Event and rendered.
const (
	TypeCreated         = "response.created"
	TypeOutputTextDelta = "response.output_text.delta"
	TypeOutputTextDone  = "response.output_text.done"
	TypeCompleted       = "response.completed"
	TypeFailed          = "response.failed"
	TypeIncomplete      = "response.incomplete"
	TypeError           = "error"
)

var (
	errInvalidJSON = errors.New("invalid JSON")
	errMissingType = errors.New(`event has no "type"`)
)

// Event is one Responses stream event.
type Event struct {
	stream.Base
	Type           string
	SequenceNumber int64
	ItemID         string
	// Delta is set on *.delta events.
	Delta string
	// Message describes the failure carried by a Failure.
	Message string
}

// Failure is an "error", "response.failed" or "response.incomplete" event.
type Failure struct {
	Event
}

// Error implements the error interface.
func (f Failure) Error() string {
	if f.Message == "" {
		return f.Type
	}
	return f.Type + ": " + f.Message
}

// Terminal reports whether the event ends the response.
func (e Event) Terminal() bool {
	switch e.Type {
	case TypeCompleted, TypeFailed, TypeIncomplete:
		return true
	default:
		return false
	}
}

// Decode implements provider.Provider. The sequence ends after a terminal
// response event, at "data: [DONE]" or at EOF.
func (a *Adapter) Decode(r io.Reader) iter.Seq[stream.Event] {
	return stream.Decode(r, decodeFrame)
}

func decodeFrame(frame stream.Frame) (stream.Event, bool) {
	switch {
	case frame.Malformed:
		return stream.NewDecodeError(frame, stream.ErrMalformedLine), false
	case frame.Done():
		return nil, true
	case !gjson.Valid(frame.Data):
		return stream.NewDecodeError(frame, errInvalidJSON), false
	}

	data := gjson.Parse(frame.Data)
	if !data.IsObject() {
		return stream.NewDecodeError(frame, errInvalidJSON), false
	}

	typ := data.Get("type").String()
	if typ == "" {
		typ = frame.Event
	}
	if typ == "" {
		return stream.NewDecodeError(frame, errMissingType), false
	}

	ev := Event{
		Base:           stream.NewBase(frame),
		Type:           typ,
		SequenceNumber: data.Get("sequence_number").Int(),
		ItemID:         data.Get("item_id").String(),
		Delta:          data.Get("delta").String(),
	}
	switch typ {
	case TypeError:
		ev.Message = data.Get("message").String()
	case TypeFailed:
		ev.Message = data.Get("response.error.message").String()
	case TypeIncomplete:
		ev.Message = data.Get("response.incomplete_details.reason").String()
	default:
		return ev, ev.Terminal()
	}
	return Failure{Event: ev}, ev.Terminal()
}
