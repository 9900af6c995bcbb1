// File-edit response formatting via prompt engineering. None of the
// supported backends gets a strict structured-output mode here; like
// the rest of the engine they are asked for JSON in the system prompt
// and the answer is recovered by the detector.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/swaggest/jsonschema-go"

	"github.com/chatkit-dev/chatkit/pkg/detect"
)

// FileEditInstruction renders the system instruction senders attach
// when the request carries file attachments, asking the model to answer
// with a file-edit payload conforming to the detector's schema.
func FileEditInstruction() (string, error) {
	reflector := jsonschema.Reflector{}

	schema, err := reflector.Reflect(detect.FileEditPayload{})
	if err != nil {
		return "", fmt.Errorf("failed to reflect file-edit schema: %w", err)
	}

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal file-edit schema: %w", err)
	}

	return fmt.Sprintf("When your answer modifies or creates files, respond only with valid JSON that conforms to this schema: %s. Include a short summary field. Do not include any text before or after the JSON object.", string(schemaBytes)), nil
}

// AttachmentsBlock renders extracted attachment text for inclusion in
// an outgoing request body.
func AttachmentsBlock(attachments []Attachment) string {
	if len(attachments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range attachments {
		fmt.Fprintf(&b, "File: %s\n```\n%s\n```\n\n", a.Filename, a.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// SystemContent combines the attachment block and, when attachments are
// present, the file-edit instruction into one system message body.
// Adapters prepend it in their own wire format.
func SystemContent(req SendRequest) string {
	if !req.HasAttachments() {
		return ""
	}

	parts := []string{AttachmentsBlock(req.Attachments)}
	if instruction, err := FileEditInstruction(); err == nil {
		parts = append(parts, instruction)
	}
	return strings.Join(parts, "\n\n")
}
