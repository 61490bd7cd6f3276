package stream

import (
	"io"
	"iter"
)

// FrameDecoder turns one frame into an event. A nil event yields nothing;
// stop ends the sequence after the event (if any) has been yielded.
type FrameDecoder func(Frame) (ev Event, stop bool)

// Decode drives a FrameDecoder over the frames of r. Read failures are
// yielded as a final DecodeError.
func Decode(r io.Reader, decode FrameDecoder) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for frame, err := range Lines(r) {
			if err != nil {
				yield(NewDecodeError(frame, err))
				return
			}

			ev, stop := decode(frame)
			if ev != nil && !yield(ev) {
				return
			}
			if stop {
				return
			}
		}
	}
}
