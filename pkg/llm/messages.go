// Message and attachment types
package llm

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of prior conversation handed back with a send.
// Content is plain text; attachments arrive separately, already reduced
// to text by the document extraction service.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewMessage creates a message for the given role
func NewMessage(role MessageRole, content string) Message {
	return Message{Role: role, Content: content}
}

// Attachment is the extracted plain text of a file the user attached to
// the request.
type Attachment struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}
