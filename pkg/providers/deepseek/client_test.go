package deepseek

import (
	"encoding/json"
	"testing"

	deepseek "github.com/cohesion-org/deepseek-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatkit-dev/chatkit/pkg/llm"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(llm.ClientConfig{})
	require.Error(t, err)
	assert.True(t, llm.IsNotConfigured(err))
}

func TestBuildSend(t *testing.T) {
	adapter, err := New(llm.ClientConfig{APIKey: "ds-key"})
	require.NoError(t, err)

	req, err := adapter.BuildSend(llm.SendRequest{
		Prompt:  "hello",
		History: []llm.Message{{Role: llm.RoleAssistant, Content: "earlier"}},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"/chat/completions", req.URL)
	assert.Equal(t, "Bearer ds-key", req.Headers["Authorization"])

	var body deepseek.StreamChatCompletionRequest
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, DefaultModel, body.Model)
	assert.True(t, body.Stream)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "assistant", body.Messages[0].Role)
	assert.Equal(t, "user", body.Messages[1].Role)
}

func TestExtractDelta(t *testing.T) {
	adapter, _ := New(llm.ClientConfig{APIKey: "ds-key"})

	t.Run("content delta", func(t *testing.T) {
		line := []byte(`data: {"choices":[{"delta":{"content":"Hi"}}]}`)
		delta, err := adapter.ExtractDelta(line)
		require.NoError(t, err)
		require.NotNil(t, delta)
		assert.Equal(t, "Hi", delta.Text)
	})

	t.Run("done sentinel", func(t *testing.T) {
		delta, err := adapter.ExtractDelta([]byte(`data: [DONE]`))
		require.NoError(t, err)
		require.NotNil(t, delta)
		assert.True(t, delta.Done)
	})

	t.Run("embedded error surfaces as text", func(t *testing.T) {
		line := []byte(`data: {"error":{"message":"invalid key"}}`)
		delta, err := adapter.ExtractDelta(line)
		require.NoError(t, err)
		require.NotNil(t, delta)
		assert.Contains(t, delta.Text, "invalid key")
	})
}

func TestParseModelList(t *testing.T) {
	adapter, _ := New(llm.ClientConfig{APIKey: "ds-key"})

	names, err := adapter.ParseModelList([]byte(`{"data":[{"id":"deepseek-chat"},{"id":"deepseek-reasoner"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"deepseek-chat", "deepseek-reasoner"}, names)
}
