// Configuration types and environment defaults
package llm

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultOllamaModel     = "gpt-oss:20b"
	DefaultDeepSeekModel   = "deepseek-chat"
	DefaultOpenRouterModel = "openrouter/auto"
)

const DefaultOllamaBaseURL = "http://localhost:11434"

const DefaultOllamaTimeout = 60 * time.Second

// ClientConfig holds configuration for creating provider adapters
type ClientConfig struct {
	Provider    string        `json:"provider"` // openai, gemini, ollama, deepseek, openrouter
	Model       string        `json:"model"`
	APIKey      string        `json:"api_key,omitempty"`
	BaseURL     string        `json:"base_url,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
}

// parseTimeoutFromEnv parses timeout from environment variable with fallback to default
func parseTimeoutFromEnv(envVar string, defaultTimeout time.Duration) time.Duration {
	if timeoutStr := os.Getenv(envVar); timeoutStr != "" {
		if timeoutSecs, err := strconv.Atoi(timeoutStr); err == nil && timeoutSecs > 0 {
			return time.Duration(timeoutSecs) * time.Second
		}
	}
	return defaultTimeout
}

// ConfigFromEnv picks a provider from the environment, preferring cloud
// keys when present and falling back to a local Ollama instance.
func ConfigFromEnv() ClientConfig {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		model := DefaultOpenAIModel
		if customModel := os.Getenv("OPENAI_MODEL"); customModel != "" {
			model = customModel
		}
		return ClientConfig{
			Provider: "openai",
			Model:    model,
			APIKey:   apiKey,
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
			Timeout:  parseTimeoutFromEnv("OPENAI_TIMEOUT", 30*time.Second),
		}
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		model := DefaultGeminiModel
		if customModel := os.Getenv("GEMINI_MODEL"); customModel != "" {
			model = customModel
		}
		return ClientConfig{
			Provider: "gemini",
			Model:    model,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("GEMINI_TIMEOUT", 30*time.Second),
		}
	}

	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" {
		return ClientConfig{
			Provider: "deepseek",
			Model:    DefaultDeepSeekModel,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("DEEPSEEK_TIMEOUT", 30*time.Second),
		}
	}

	if apiKey := os.Getenv("OPENROUTER_API_KEY"); apiKey != "" {
		return ClientConfig{
			Provider: "openrouter",
			Model:    DefaultOpenRouterModel,
			APIKey:   apiKey,
			Timeout:  parseTimeoutFromEnv("OPENROUTER_TIMEOUT", 30*time.Second),
		}
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	model := DefaultOllamaModel
	if customModel := os.Getenv("OLLAMA_MODEL"); customModel != "" {
		model = customModel
	}
	return ClientConfig{
		Provider: "ollama",
		Model:    model,
		BaseURL:  baseURL,
		Timeout:  parseTimeoutFromEnv("OLLAMA_TIMEOUT", DefaultOllamaTimeout),
	}
}
