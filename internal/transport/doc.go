// Package transport posts request payloads to the provider APIs and hands
// back the streaming response.
//
// Authentication is layered as http.RoundTrippers: OpenAI keys travel as
// bearer tokens through oauth2.Transport, Anthropic keys in the x-api-key
// header together with the API version. Every request carries a fresh
// X-Client-Request-Id and the W3C trace context of the caller.
//
// The client has no overall timeout: streams run as long as the provider
// keeps sending. Cancel the context to abort.
package transport
