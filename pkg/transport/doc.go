// Package transport provides the streaming HTTP primitive shared by all
// provider adapters: a cancellable line-oriented session with an
// append-only text accumulator, plus a small cached GET helper for model
// catalog requests.
package transport
