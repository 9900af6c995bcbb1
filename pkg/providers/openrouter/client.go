package openrouter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	openrouter "github.com/revrost/go-openrouter"

	"github.com/chatkit-dev/chatkit/pkg/llm"
	"github.com/chatkit-dev/chatkit/pkg/transport"
)

const DefaultModel = "openrouter/auto"

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Adapter implements llm.Adapter for OpenRouter.
type Adapter struct {
	apiKey      string
	model       string
	baseURL     string
	temperature *float32
}

// New creates an OpenRouter adapter. The API key is required.
func New(config llm.ClientConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, llm.NewNotConfiguredError("openrouter", "API key")
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
func (a *Adapter) Name() string { return "openrouter" }

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

	body := openrouter.ChatCompletionRequest{
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

func buildMessages(req llm.SendRequest) []openrouter.ChatCompletionMessage {
	messages := make([]openrouter.ChatCompletionMessage, 0, len(req.History)+2)

	if system := llm.SystemContent(req); system != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    "system",
			Content: openrouter.Content{Text: system},
		})
	}
	for _, msg := range req.History {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: openrouter.Content{Text: msg.Content},
		})
	}
	messages = append(messages, openrouter.ChatCompletionMessage{
		Role:    "user",
		Content: openrouter.Content{Text: req.Prompt},
	})
	return messages
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractDelta decodes one SSE event. OpenRouter interleaves comment
// keep-alive lines, which SSEData already drops.
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

	var chunk openrouter.ChatCompletionStreamResponse
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

// ParseModelList extracts model ids from the catalog. Ids are vendor
// prefixed ("openai/gpt-4o") and pass through untouched so routing
// still works.
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
