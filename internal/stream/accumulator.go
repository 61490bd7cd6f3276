package stream

import (
	"iter"
	"strings"
)

// TextFunc extracts the text fragment carried by an event, if any.
type TextFunc func(Event) (string, bool)

// Accumulator concatenates text fragments in the order their events arrive.
type Accumulator struct {
	extract   TextFunc
	text      strings.Builder
	fragments int
}

// NewAccumulator returns an empty accumulator using extract.
func NewAccumulator(extract TextFunc) *Accumulator {
	return &Accumulator{extract: extract}
}

// Add folds one event into the accumulated text and returns the fragment it
// contributed. Decode errors never contribute.
func (a *Accumulator) Add(ev Event) (string, bool) {
	if _, ok := ev.(DecodeError); ok {
		return "", false
	}
	fragment, ok := a.extract(ev)
	if !ok || fragment == "" {
		return "", false
	}
	a.text.WriteString(fragment)
	a.fragments++
	return fragment, true
}

// String returns the text accumulated so far.
func (a *Accumulator) String() string {
	return a.text.String()
}

// Fragments returns how many fragments were added.
func (a *Accumulator) Fragments() int {
	return a.fragments
}

// Fold drains events into a new accumulator and returns the final text.
func Fold(events iter.Seq[Event], extract TextFunc) string {
	acc := NewAccumulator(extract)
	for ev := range events {
		acc.Add(ev)
	}
	return acc.String()
}
