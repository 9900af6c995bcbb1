package ollama

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/chatkit-dev/chatkit/pkg/llm"
	"github.com/chatkit-dev/chatkit/pkg/transport"
)

const DefaultModel = "gpt-oss:20b"

const DefaultBaseURL = "http://localhost:11434"

// Adapter implements llm.Adapter for Ollama.
type Adapter struct {
	model       string
	baseURL     string
	temperature *float32
}

// New creates an Ollama adapter. No credential is required for a local
// server.
func New(config llm.ClientConfig) (*Adapter, error) {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}
	return &Adapter{model: model, baseURL: baseURL, temperature: config.Temperature}, nil
}

// Name identifies the backend.
func (a *Adapter) Name() string { return "ollama" }

// Ollama API structures
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	System  string           `json:"system,omitempty"`
	Context []int            `json:"context,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature *float32 `json:"temperature,omitempty"`
}

type generateChunk struct {
	Response string `json:"response"`
	Context  []int  `json:"context,omitempty"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// BuildSend builds the /api/generate request. The generate API has no
// message list, so history is flattened into the prompt.
func (a *Adapter) BuildSend(req llm.SendRequest) (*transport.Request, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}

	temperature := req.Temperature
	if temperature == nil {
		temperature = a.temperature
	}

	body := generateRequest{
		Model:   model,
		Prompt:  renderPrompt(req),
		System:  llm.SystemContent(req),
		Context: req.Context,
		Stream:  true,
	}
	if temperature != nil {
		body.Options = &generateOptions{Temperature: temperature}
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
		Method:  http.MethodPost,
		URL:     a.baseURL + "/api/generate",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    data,
	}, nil
}

// renderPrompt flattens history and attachments ahead of the new prompt.
func renderPrompt(req llm.SendRequest) string {
	var b strings.Builder
	for _, msg := range req.History {
		switch msg.Role {
		case llm.RoleUser:
			b.WriteString("### User:\n")
		case llm.RoleAssistant:
			b.WriteString("### Assistant:\n")
		case llm.RoleSystem:
			b.WriteString("### System:\n")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	if len(req.History) > 0 {
		b.WriteString("### User:\n")
	}
	b.WriteString(req.Prompt)
	return b.String()
}

// ExtractDelta decodes one NDJSON chunk. Some proxies prefix lines with
// SSE framing, so a leading "data: " is tolerated. Malformed lines are
// swallowed; a server-reported error is terminal and the partial-result
// rule applies to whatever already streamed.
func (a *Adapter) ExtractDelta(line []byte) (*llm.Delta, error) {
	line = bytes.TrimPrefix(line, []byte("data: "))

	var chunk generateChunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		return nil, nil
	}

	if chunk.Error != "" {
		return nil, &llm.Error{
			Code:    "ollama_error",
			Message: chunk.Error,
			Type:    "api_error",
		}
	}

	if chunk.Done {
		return &llm.Delta{Text: chunk.Response, Context: chunk.Context, Done: true}, nil
	}
	if chunk.Response == "" && chunk.Context == nil {
		return nil, nil
	}
	return &llm.Delta{Text: chunk.Response, Context: chunk.Context}, nil
}

// BuildListModels builds the /api/tags catalog request.
func (a *Adapter) BuildListModels() (*transport.Request, error) {
	return &transport.Request{
		Method: http.MethodGet,
		URL:    a.baseURL + "/api/tags",
	}, nil
}

// ParseModelList extracts model names from /api/tags. A local catalog
// lists only what the user pulled, so no exclusion rules apply.
func (a *Adapter) ParseModelList(body []byte) ([]string, error) {
	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, &llm.Error{
			Code:    "parse_error",
			Message: fmt.Sprintf("Failed to parse model list: %v", err),
			Type:    "client_error",
		}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
