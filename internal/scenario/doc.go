// Package scenario defines the provider-agnostic conversations used to
// exercise the LLM wire formats.
//
// A Scenario is an ordered list of turns. Each turn has a role and ordered
// content items drawn from a closed set of variants:
//
//   - Text: plain text
//   - Image: base64 data with a media type, or a remote URL
//   - ToolCall: an assistant request to call a declared tool
//   - ToolResult: the result of a tool call, itself made of Text and Image items
//
// The catalog (Build) returns fresh values on every call, so callers may
// treat a Scenario as immutable. Image bytes are loaded by LoadImage and
// passed in already base64 encoded; the catalog never touches the filesystem.
package scenario
