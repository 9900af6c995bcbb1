// Package gemini implements the adapter for the Google Gemini
// generateContent API, streamed over SSE. Authentication rides the
// query string rather than a header.
package gemini
