// Package openrouter implements the adapter for the OpenRouter
// aggregation API, streamed over SSE with bearer authentication.
package openrouter
