// Package stream reads server-sent event streams line by line and defines
// the event variants shared by every provider decoder.
//
// Lines yields one Frame per "data:" line, carrying the pending "event:"
// name and the exact lines received, so a presenter can echo the wire
// bytes unchanged. Provider packages turn frames into their own Event
// variants by embedding Base; frames that cannot be understood become
// DecodeError events instead of being dropped.
//
// Accumulator folds events into the reconstructed response text using a
// provider supplied extractor, one event at a time.
package stream
