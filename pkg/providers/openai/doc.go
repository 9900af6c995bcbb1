// Package openai implements the adapter for the OpenAI chat completions
// API, streamed over SSE with bearer authentication.
package openai
