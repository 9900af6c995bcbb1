package factory

import (
	"github.com/chatkit-dev/chatkit/pkg/llm"
	"github.com/chatkit-dev/chatkit/pkg/providers/deepseek"
	"github.com/chatkit-dev/chatkit/pkg/providers/gemini"
	"github.com/chatkit-dev/chatkit/pkg/providers/ollama"
	"github.com/chatkit-dev/chatkit/pkg/providers/openai"
	"github.com/chatkit-dev/chatkit/pkg/providers/openrouter"
)

func init() {
	RegisterProvider("ollama", func(config llm.ClientConfig) (llm.Adapter, error) {
		return ollama.New(config)
	})

	RegisterProvider("openai", func(config llm.ClientConfig) (llm.Adapter, error) {
		return openai.New(config)
	})

	RegisterProvider("gemini", func(config llm.ClientConfig) (llm.Adapter, error) {
		return gemini.New(config)
	})

	RegisterProvider("deepseek", func(config llm.ClientConfig) (llm.Adapter, error) {
		return deepseek.New(config)
	})

	RegisterProvider("openrouter", func(config llm.ClientConfig) (llm.Adapter, error) {
		return openrouter.New(config)
	})
}
