// Adapter interface and the types flowing through a streaming exchange
package llm

import (
	"bytes"

	"github.com/chatkit-dev/chatkit/pkg/transport"
)

// SendRequest carries everything needed for one outgoing message.
// Immutable once handed to an adapter.
type SendRequest struct {
	Model       string
	Prompt      string
	History     []Message
	Attachments []Attachment
	Temperature *float32

	// Context is the opaque continuity token of completion-style
	// backends. The Client injects the token from the previous exchange
	// when the caller leaves it nil.
	Context []int
}

// HasAttachments reports whether the request carries extracted files,
// which switches senders into file-edit mode.
func (r SendRequest) HasAttachments() bool {
	return len(r.Attachments) > 0
}

// Delta is one adapter-normalized unit of model output extracted from a
// single transport line.
type Delta struct {
	Text string

	// Context is the updated continuity token, completion-style only.
	Context []int

	// Done marks the backend's end-of-stream sentinel.
	Done bool
}

// Result is the final outcome of an exchange.
type Result struct {
	Text    string
	Context []int
}

// Adapter translates between the engine's provider-agnostic types and
// one backend's wire protocol. Implementations are stateless beyond
// their configuration; all streaming state lives in the transport
// session.
type Adapter interface {
	// Name identifies the backend in errors and logs.
	Name() string

	// BuildSend translates a send into a wire request with stream mode
	// enabled.
	BuildSend(req SendRequest) (*transport.Request, error)

	// ExtractDelta normalizes one raw line into a Delta. A (nil, nil)
	// return means the line carried nothing usable; malformed lines are
	// swallowed this way and never terminate the stream.
	ExtractDelta(line []byte) (*Delta, error)

	// BuildListModels builds the catalog request for the backend.
	BuildListModels() (*transport.Request, error)

	// ParseModelList extracts raw model names from a catalog response,
	// applying the backend's own exclusion rules. Collapsing and sorting
	// happen in NormalizeModelNames.
	ParseModelList(body []byte) ([]string, error)
}

var sseDataPrefix = []byte("data:")

// SSEData strips event-stream framing from a line. The second return is
// false for lines that are not data frames (event:, id:, retry:,
// comments), which adapters skip.
func SSEData(line []byte) ([]byte, bool) {
	if !bytes.HasPrefix(line, sseDataPrefix) {
		return nil, false
	}
	return bytes.TrimSpace(line[len(sseDataPrefix):]), true
}

// SSEDone is the OpenAI-style end-of-stream sentinel payload.
const SSEDone = "[DONE]"
