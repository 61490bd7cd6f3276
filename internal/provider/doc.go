// Package provider defines the contract every LLM wire format implements:
// building a request payload from a scenario, decoding the streamed
// response into events and extracting text from those events.
//
// Implementations live in the subpackages openaichat, openairesponses and
// anthropicmessages. They are stateless; the caller selects one by Name at
// startup and drives the whole run through the Provider interface.
package provider
