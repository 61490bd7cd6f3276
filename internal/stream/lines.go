package stream

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// DoneMarker is the OpenAI terminal data payload.
const DoneMarker = "[DONE]"

// Frame is a single "data:" line of a server-sent event stream together
// with the event name announced before it.
type Frame struct {
	// Event is the value of the preceding "event:" field, if any.
	Event string
	// Data is the value of the "data:" field with the field prefix removed.
	Data string
	// Raw holds the lines that produced the frame, joined by "\n", without
	// the trailing line terminator.
	Raw string
	// Malformed is set for lines that are neither a known field, a comment
	// nor blank. Data is empty and Raw holds the offending line.
	Malformed bool
}

// Done reports whether the frame carries the OpenAI terminal marker.
func (f Frame) Done() bool {
	return !f.Malformed && strings.TrimSpace(f.Data) == DoneMarker
}

// Lines reads r and yields a frame for every "data:" line and every
// malformed line, in arrival order. Blank lines end the current event,
// comments and the "id" and "retry" fields are skipped. A read error other
// than io.EOF is yielded once and ends the sequence.
func Lines(r io.Reader) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		reader := bufio.NewReaderSize(r, 64*1024)

		var event, eventLine string
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				line = strings.TrimRight(line, "\r\n")

				switch field, value := splitField(line); {
				case line == "":
					event, eventLine = "", ""
				case strings.HasPrefix(line, ":"):
					// comment / keep-alive
				case field == "event":
					event, eventLine = value, line
				case field == "data":
					raw := line
					if eventLine != "" {
						raw = eventLine + "\n" + line
					}
					if !yield(Frame{Event: event, Data: value, Raw: raw}, nil) {
						return
					}
					eventLine = ""
				case field == "id" || field == "retry":
				default:
					if !yield(Frame{Raw: line, Malformed: true}, nil) {
						return
					}
				}
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Frame{}, err)
				}
				return
			}
		}
	}
}

// splitField splits "field: value"; the single space after the colon is optional.
func splitField(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
