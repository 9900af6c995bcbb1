// Package llm provides the provider-agnostic core of the chat engine:
// the Adapter interface implemented once per backend, the request and
// delta types flowing through a streaming exchange, and the Client that
// owns the single in-flight session per provider instance.
package llm
