package deepseek

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	deepseek "github.com/cohesion-org/deepseek-go"

	"github.com/chatkit-dev/chatkit/pkg/llm"
	"github.com/chatkit-dev/chatkit/pkg/transport"
)

const DefaultModel = "deepseek-chat"

const DefaultBaseURL = "https://api.deepseek.com"

// Adapter implements llm.Adapter for DeepSeek.
type Adapter struct {
	apiKey      string
	model       string
	baseURL     string
	temperature *float32
}

// New creates a DeepSeek adapter. The API key is required.
func New(config llm.ClientConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, llm.NewNotConfiguredError("deepseek", "API key")
	}
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	return &Adapter{
		apiKey:      config.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: config.Temperature,
	}, nil
}

// Name identifies the backend.
func (a *Adapter) Name() string { return "deepseek" }

// BuildSend builds the streaming chat completions request.
func (a *Adapter) BuildSend(req llm.SendRequest) (*transport.Request, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}

	temperature := req.Temperature
	if temperature == nil {
		temperature = a.temperature
	}

	body := deepseek.StreamChatCompletionRequest{
		Model:    model,
		Messages: buildMessages(req),
		Stream:   true,
	}
	if temperature != nil {
		body.Temperature = *temperature
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, &llm.Error{
			Code:    "request_error",
			Message: fmt.Sprintf("Failed to serialize request: %v", err),
			Type:    "client_error",
		}
	}

	return &transport.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + a.apiKey,
		},
		Body: data,
	}, nil
}

func buildMessages(req llm.SendRequest) []deepseek.ChatCompletionMessage {
	messages := make([]deepseek.ChatCompletionMessage, 0, len(req.History)+2)

	if system := llm.SystemContent(req); system != "" {
		messages = append(messages, deepseek.ChatCompletionMessage{
			Role:    "system",
			Content: system,
		})
	}
	for _, msg := range req.History {
		messages = append(messages, deepseek.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	messages = append(messages, deepseek.ChatCompletionMessage{
		Role:    "user",
		Content: req.Prompt,
	})
	return messages
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractDelta decodes one SSE event.
func (a *Adapter) ExtractDelta(line []byte) (*llm.Delta, error) {
	payload, ok := llm.SSEData(line)
	if !ok {
		return nil, nil
	}
	if string(payload) == llm.SSEDone {
		return &llm.Delta{Done: true}, nil
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error != nil {
		return &llm.Delta{Text: "Error: " + envelope.Error.Message, Done: true}, nil
	}

	var chunk deepseek.StreamChatCompletionResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return nil, nil
	}
	if len(chunk.Choices) == 0 {
		return nil, nil
	}

	choice := chunk.Choices[0]
	delta := &llm.Delta{Text: choice.Delta.Content}
	if choice.FinishReason != "" {
		delta.Done = true
	}
	if delta.Text == "" && !delta.Done {
		return nil, nil
	}
	return delta, nil
}

// BuildListModels builds the model catalog request.
func (a *Adapter) BuildListModels() (*transport.Request, error) {
	return &transport.Request{
		Method:  http.MethodGet,
		URL:     a.baseURL + "/models",
		Headers: map[string]string{"Authorization": "Bearer " + a.apiKey},
	}, nil
}

type modelCatalog struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ParseModelList extracts model ids from the catalog. The catalog is
// small and chat-only, so no exclusion rules apply.
func (a *Adapter) ParseModelList(body []byte) ([]string, error) {
	var catalog modelCatalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, &llm.Error{
			Code:    "parse_error",
			Message: fmt.Sprintf("Failed to parse model list: %v", err),
			Type:    "client_error",
		}
	}

	names := make([]string, 0, len(catalog.Data))
	for _, m := range catalog.Data {
		names = append(names, m.ID)
	}
	return names, nil
}
