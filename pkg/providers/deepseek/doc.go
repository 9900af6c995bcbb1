// Package deepseek implements the adapter for the DeepSeek chat
// completions API, streamed over SSE with bearer authentication.
package deepseek
