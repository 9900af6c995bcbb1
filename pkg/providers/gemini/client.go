package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/chatkit-dev/chatkit/pkg/llm"
	"github.com/chatkit-dev/chatkit/pkg/transport"
)

const DefaultModel = "gemini-1.5-flash"

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Catalog entries that cannot serve chat.
var excludedModels = []*regexp.Regexp{
	regexp.MustCompile(`embedding|aqa|imagen|tts|audio|vision`),
}

// Adapter implements llm.Adapter for Gemini.
type Adapter struct {
	apiKey      string
	model       string
	baseURL     string
	temperature *float32
}

// New creates a Gemini adapter. The API key is required.
func New(config llm.ClientConfig) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, llm.NewNotConfiguredError("gemini", "API key")
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
func (a *Adapter) Name() string { return "gemini" }

type generationConfig struct {
	Temperature *float32 `json:"temperature,omitempty"`
}

type generateBody struct {
	Contents          []*genai.Content  `json:"contents"`
	SystemInstruction *genai.Content    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// BuildSend builds the streaming generateContent request. The key rides
// the query string, which is why request URLs must never be logged.
func (a *Adapter) BuildSend(req llm.SendRequest) (*transport.Request, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}

	temperature := req.Temperature
	if temperature == nil {
		temperature = a.temperature
	}

	body := generateBody{Contents: buildContents(req)}
	if system := llm.SystemContent(req); system != "" {
		body.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if temperature != nil {
		body.GenerationConfig = &generationConfig{Temperature: temperature}
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
		URL: fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s",
			a.baseURL, url.PathEscape(model), url.QueryEscape(a.apiKey)),
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    data,
	}, nil
}

func buildContents(req llm.SendRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		role := genai.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.Prompt}},
	})
	return contents
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractDelta decodes one SSE event. Gemini ends the stream with a
// finish reason on the last candidate instead of a sentinel.
func (a *Adapter) ExtractDelta(line []byte) (*llm.Delta, error) {
	payload, ok := llm.SSEData(line)
	if !ok {
		return nil, nil
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error != nil {
		return &llm.Delta{Text: "Error: " + envelope.Error.Message, Done: true}, nil
	}

	var chunk genai.GenerateContentResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return nil, nil
	}
	if len(chunk.Candidates) == 0 {
		return nil, nil
	}

	candidate := chunk.Candidates[0]
	if candidate == nil {
		return nil, nil
	}
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				text.WriteString(part.Text)
			}
		}
	}

	delta := &llm.Delta{Text: text.String()}
	if candidate.FinishReason != "" {
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
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/models?key=%s", a.baseURL, url.QueryEscape(a.apiKey)),
	}, nil
}

type modelCatalog struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
}

// ParseModelList extracts chat-capable model ids, keeping only entries
// that support generateContent and stripping the "models/" prefix.
func (a *Adapter) ParseModelList(body []byte) ([]string, error) {
	var catalog modelCatalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, &llm.Error{
			Code:    "parse_error",
			Message: fmt.Sprintf("Failed to parse model list: %v", err),
			Type:    "client_error",
		}
	}

	var names []string
	for _, m := range catalog.Models {
		supported := false
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return llm.FilterModelNames(names, excludedModels), nil
}
