// Package present renders a run for the terminal: the request payload, each
// streamed event and the accumulated text.
//
// Rendering never alters what it is given. Payloads are pretty-printed from
// a copy with long base64 strings shortened, events are shown either as the
// exact lines received or as indented JSON.
package present
