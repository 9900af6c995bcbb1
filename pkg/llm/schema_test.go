package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEditInstruction(t *testing.T) {
	instruction, err := FileEditInstruction()
	require.NoError(t, err)

	// The schema must name the fields the detector looks for.
	assert.Contains(t, instruction, "filename")
	assert.Contains(t, instruction, "content")
	assert.Contains(t, instruction, "files")
	assert.Contains(t, instruction, "summary")
}

func TestAttachmentsBlock(t *testing.T) {
	assert.Equal(t, "", AttachmentsBlock(nil))

	block := AttachmentsBlock([]Attachment{
		{Filename: "main.go", Text: "package main"},
	})
	assert.Contains(t, block, "File: main.go")
	assert.Contains(t, block, "package main")
}

func TestSystemContent(t *testing.T) {
	// No attachments means no system message at all.
	assert.Equal(t, "", SystemContent(SendRequest{Prompt: "hi"}))

	content := SystemContent(SendRequest{
		Prompt:      "fix this",
		Attachments: []Attachment{{Filename: "a.txt", Text: "hello"}},
	})
	assert.Contains(t, content, "File: a.txt")
	assert.Contains(t, content, "valid JSON")
}
