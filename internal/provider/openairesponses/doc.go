// Package openairesponses implements the OpenAI Responses wire format.
//
// The request models are hand-written: the Responses input array mixes
// message items with function_call and function_call_output items, and a
// conversation consisting of a single user text is sent as a plain string.
// Streamed events are discriminated on their JSON "type".
package openairesponses
