// Package ollama implements the adapter for a local Ollama server using
// the completion-style /api/generate endpoint. Continuity works through
// an opaque context token the server returns with each chunk; the
// session manager resends the latest token on the next request, so the
// server itself stays stateless.
package ollama
