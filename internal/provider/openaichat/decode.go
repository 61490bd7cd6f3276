package openaichat

import (
	"encoding/json"
	"errors"
	"io"
	"iter"

	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"

	"github.com/florianilch/llmwire/internal/stream"
)

var errInvalidJSON = errors.New("invalid JSON")

// Chunk is a "chat.completion.chunk" event.
type Chunk struct {
	stream.Base
	Completion openai.ChatCompletionChunk
}

// Failure is an in-stream error payload: {"error": {...}}.
type Failure struct {
	stream.Base
	Err APIError
}

// Error implements the error interface.
func (f Failure) Error() string {
	return f.Err.Error()
}

// Unwrap returns the error object.
func (f Failure) Unwrap() error {
	return f.Err
}

// APIError is the OpenAI error object.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Error implements the error interface.
func (e APIError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return e.Type + ": " + e.Message
}

// Decode implements provider.Provider. "data: [DONE]" ends the sequence
// without producing an event.
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

	if errObj := gjson.Get(frame.Data, "error"); errObj.IsObject() {
		f := Failure{Base: stream.NewBase(frame)}
		// code is a string or a number depending on the error
		f.Err.Message = errObj.Get("message").String()
		f.Err.Type = errObj.Get("type").String()
		f.Err.Code = errObj.Get("code").String()
		f.Err.Param = errObj.Get("param").String()
		return f, false
	}

	var chunk openai.ChatCompletionChunk
	if err := json.Unmarshal([]byte(frame.Data), &chunk); err != nil {
		return stream.NewDecodeError(frame, err), false
	}
	return Chunk{Base: stream.NewBase(frame), Completion: chunk}, false
}
