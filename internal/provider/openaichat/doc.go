// Package openaichat implements the OpenAI Chat Completions wire format:
// building "messages" payloads from scenarios and decoding the
// "chat.completion.chunk" event stream.
//
// The request body is assembled from openai-go parameter unions so the
// JSON matches what the official SDK sends. Chunks are decoded into
// openai.ChatCompletionChunk values.
package openaichat
