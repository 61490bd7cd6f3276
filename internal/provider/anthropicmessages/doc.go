// Package anthropicmessages implements the Anthropic Messages wire format.
//
// # Payload
//
// Instruction turns become the top-level "system" string. The remaining
// turns map onto user and assistant messages built from anthropic-sdk-go
// content block params: text, image (base64 or url source), tool_use and
// tool_result. Adjacent turns that map to the same role are merged into one
// message, since the API requires roles to alternate; in particular
// consecutive tool results travel in a single user message.
//
// # Stream
//
// Events are typed: an "event:" line names the type and the "data:" line
// carries the JSON body, which is decoded into
// anthropic.MessageStreamEventUnion. "message_stop" ends the stream.
// Event types the SDK does not know are kept as stream.Unknown so they are
// still rendered.
package anthropicmessages
