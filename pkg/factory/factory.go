package factory

import (
	"fmt"
	"strings"

	"github.com/chatkit-dev/chatkit/pkg/llm"
	"github.com/chatkit-dev/chatkit/pkg/transport"
)

const DefaultProvider = "ollama"

// Factory creates streaming clients based on configuration
type Factory struct{}

// New creates a new client factory
func New() *Factory {
	return &Factory{}
}

// CreateClient creates a streaming client based on the configuration.
// The adapter is resolved through the provider registry and wrapped in
// a session-managing client.
func (f *Factory) CreateClient(config llm.ClientConfig, opts ...llm.Option) (*llm.Client, error) {
	provider := config.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	provider = strings.ToLower(provider)

	constructor, exists := GetProvider(provider)
	if !exists {
		return nil, &llm.Error{
			Code:    "unsupported_provider",
			Message: fmt.Sprintf("unsupported provider: %s", provider),
			Type:    "validation_error",
		}
	}

	adapter, err := constructor(config)
	if err != nil {
		return nil, err
	}

	// config.Timeout bounds the wait for response headers; later opts
	// can still substitute their own transport.
	clientOpts := append([]llm.Option{
		llm.WithTransport(transport.NewClient(config.Timeout)),
	}, opts...)
	return llm.NewClient(adapter, clientOpts...), nil
}
