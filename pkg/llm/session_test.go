package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatkit-dev/chatkit/pkg/transport"
)

// testAdapter speaks a minimal NDJSON protocol against httptest servers:
// {"text":"..","context":[..],"done":bool,"fail":bool} per line.
type testAdapter struct {
	url  string
	sent []SendRequest
}

func (a *testAdapter) Name() string { return "test" }

func (a *testAdapter) BuildSend(req SendRequest) (*transport.Request, error) {
	a.sent = append(a.sent, req)
	return &transport.Request{Method: http.MethodPost, URL: a.url, Body: []byte("{}")}, nil
}

func (a *testAdapter) ExtractDelta(line []byte) (*Delta, error) {
	var chunk struct {
		Text    string `json:"text"`
		Context []int  `json:"context"`
		Done    bool   `json:"done"`
		Fail    bool   `json:"fail"`
	}
	if err := json.Unmarshal(line, &chunk); err != nil {
		return nil, nil
	}
	if chunk.Fail {
		return nil, &Error{Code: "test_error", Message: "backend failed", Type: "api_error"}
	}
	return &Delta{Text: chunk.Text, Context: chunk.Context, Done: chunk.Done}, nil
}

func (a *testAdapter) BuildListModels() (*transport.Request, error) {
	return &transport.Request{Method: http.MethodGet, URL: a.url + "/models"}, nil
}

func (a *testAdapter) ParseModelList(body []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func ndjsonServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintln(w, line)
			flusher.Flush()
		}
	}))
}

func TestSendStreamsDeltasInOrder(t *testing.T) {
	server := ndjsonServer(t,
		`{"text":"Hello "}`,
		`{"text":"world"}`,
		`{"text":"!","done":true}`,
	)
	defer server.Close()

	client := NewClient(&testAdapter{url: server.URL})

	var deltas []string
	ex, err := client.Send(context.Background(), SendRequest{Prompt: "hi"}, func(d Delta) {
		deltas = append(deltas, d.Text)
	})
	require.NoError(t, err)

	result, err := ex.Wait()
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", result.Text)
	assert.Equal(t, []string{"Hello ", "world", "!"}, deltas)
}

func TestSendRetiresPreviousExchange(t *testing.T) {
	release := make(chan struct{})
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"text":"partial"}`)
		flusher.Flush()
		<-release
	}))
	defer first.Close()
	defer close(release)

	second := ndjsonServer(t, `{"text":"fresh","done":true}`)
	defer second.Close()

	adapter := &testAdapter{url: first.URL}
	client := NewClient(adapter)

	ex1, err := client.Send(context.Background(), SendRequest{Prompt: "one"}, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return ex1.Text() == "partial"
	}, 5*time.Second, 5*time.Millisecond)

	adapter.url = second.URL
	ex2, err := client.Send(context.Background(), SendRequest{Prompt: "two"}, nil)
	require.NoError(t, err)

	// The retired exchange resolves with its partial text, not an error.
	result1, err := ex1.Wait()
	require.NoError(t, err)
	assert.Equal(t, "partial", result1.Text)

	result2, err := ex2.Wait()
	require.NoError(t, err)
	assert.Equal(t, "fresh", result2.Text)
}

func TestContextTokenRoundTrip(t *testing.T) {
	server := ndjsonServer(t,
		`{"text":"answer"}`,
		`{"context":[1,2,3],"done":true}`,
	)
	defer server.Close()

	adapter := &testAdapter{url: server.URL}
	client := NewClient(adapter)

	ex, err := client.Send(context.Background(), SendRequest{Prompt: "first"}, nil)
	require.NoError(t, err)
	result, err := ex.Wait()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, result.Context)
	assert.Equal(t, []int{1, 2, 3}, client.Context())

	// A follow-up send with a nil token picks up the stored one.
	ex, err = client.Send(context.Background(), SendRequest{Prompt: "second"}, nil)
	require.NoError(t, err)
	_, _ = ex.Wait()
	require.Len(t, adapter.sent, 2)
	assert.Equal(t, []int{1, 2, 3}, adapter.sent[1].Context)

	// An explicit token wins over the stored one.
	ex, err = client.Send(context.Background(), SendRequest{Prompt: "third", Context: []int{9}}, nil)
	require.NoError(t, err)
	_, _ = ex.Wait()
	require.Len(t, adapter.sent, 3)
	assert.Equal(t, []int{9}, adapter.sent[2].Context)
}

func TestSendFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(&testAdapter{url: server.URL})

	_, err := client.Send(context.Background(), SendRequest{Prompt: "hi"}, nil)
	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "test_404", llmErr.Code)
	assert.Equal(t, http.StatusNotFound, llmErr.StatusCode)
}

func TestMidStreamFailureWithoutTextFails(t *testing.T) {
	server := ndjsonServer(t, `{"fail":true}`)
	defer server.Close()

	client := NewClient(&testAdapter{url: server.URL})

	ex, err := client.Send(context.Background(), SendRequest{Prompt: "hi"}, nil)
	require.NoError(t, err)

	_, err = ex.Wait()
	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "test_error", llmErr.Code)
}

func TestMidStreamFailureAfterTextDegrades(t *testing.T) {
	server := ndjsonServer(t,
		`{"text":"most of the answer"}`,
		`{"fail":true}`,
	)
	defer server.Close()

	client := NewClient(&testAdapter{url: server.URL})

	ex, err := client.Send(context.Background(), SendRequest{Prompt: "hi"}, nil)
	require.NoError(t, err)

	result, err := ex.Wait()
	require.NoError(t, err)
	assert.Equal(t, "most of the answer", result.Text)
}

func TestStopWithoutExchange(t *testing.T) {
	client := NewClient(&testAdapter{url: "http://127.0.0.1:1"})
	assert.Equal(t, "", client.Stop())
}

func TestFetchModelNamesNormalizes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["gpt-4","gpt-4-preview","gpt-4-preview-2024-01-01","alpha"]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(&testAdapter{url: server.URL})

	names, err := client.FetchModelNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gpt-4"}, names)
}
