// Package factory provides provider registration and client creation.
//
// The registry maps provider names to adapter constructors; importing
// this package registers every built-in provider as a side effect.
//
// Example usage:
//
//	f := factory.New()
//	client, err := f.CreateClient(llm.ClientConfig{
//	    Provider: "ollama",
//	    Model:    "llama3",
//	})
package factory
