package openai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/chatkit-dev/chatkit/pkg/llm"
	"github.com/chatkit-dev/chatkit/pkg/transport"
)

const DefaultModel = "gpt-4o-mini"

const DefaultBaseURL = "https://api.openai.com/v1"

// Catalog entries that are not chat models.
var excludedModels = []*regexp.Regexp{
	regexp.MustCompile(`vision|embed|instruct|audio|whisper|tts|transcribe|realtime|dall-e|image|moderation`),
}

// Adapter implements llm.Adapter for OpenAI.
type Adapter struct {
	apiKey      string
	model       string
	baseURL     string
	temperature *float32
}

// New creates an OpenAI adapter. The API key is required.
func New(config llm.ClientConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, llm.NewNotConfiguredError("openai", "API key")
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
func (a *Adapter) Name() string { return "openai" }

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

	body := goopenai.ChatCompletionRequest{
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

func buildMessages(req llm.SendRequest) []goopenai.ChatCompletionMessage {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.History)+2)

	if system := llm.SystemContent(req); system != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range req.History {
		role := goopenai.ChatMessageRoleUser
		switch msg.Role {
		case llm.RoleAssistant:
			role = goopenai.ChatMessageRoleAssistant
		case llm.RoleSystem:
			role = goopenai.ChatMessageRoleSystem
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
	return messages
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractDelta decodes one SSE event. An error envelope embedded in the
// stream surfaces as displayable text rather than being dropped.
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

	var chunk goopenai.ChatCompletionStreamResponse
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

// ParseModelList extracts chat model ids from the catalog, dropping
// non-chat entries.
func (a *Adapter) ParseModelList(body []byte) ([]string, error) {
	var list goopenai.ModelsList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &llm.Error{
			Code:    "parse_error",
			Message: fmt.Sprintf("Failed to parse model list: %v", err),
			Type:    "client_error",
		}
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return llm.FilterModelNames(names, excludedModels), nil
}
