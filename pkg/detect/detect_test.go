package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEditPlainProseIgnored(t *testing.T) {
	assert.Nil(t, FileEdit("Just a normal answer about Go maps.", false))
	assert.Nil(t, FileEdit("Use braces like {x: 1} in your config.", false))
	assert.Nil(t, FileEdit("", true))
}

func TestFileEditWholeTextPayload(t *testing.T) {
	payload := FileEdit(`{"files":[{"filename":"a.txt","content":"hi"}]}`, true)
	require.NotNil(t, payload)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "a.txt", payload.Files[0].Filename)
	assert.Equal(t, "hi", payload.Files[0].Content)
}

func TestFileEditBareObjectNormalized(t *testing.T) {
	payload := FileEdit(`{"filename":"main.go","content":"package main"}`, true)
	require.NotNil(t, payload)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "main.go", payload.Files[0].Filename)
	assert.Equal(t, "File: main.go", payload.Summary)
}

func TestFileEditFencedJSON(t *testing.T) {
	text := "Here are your changes:\n```json\n" +
		`{"summary":"update","files":[{"filename":"x.go","content":"y"}]}` +
		"\n```\nDone."
	payload := FileEdit(text, true)
	require.NotNil(t, payload)
	assert.Equal(t, "update", payload.Summary)
	require.Len(t, payload.Files, 1)
	assert.Equal(t, "x.go", payload.Files[0].Filename)
}

func TestFileEditEmbeddedInProse(t *testing.T) {
	text := `I made the edit you asked for: {"summary":"fix typo","files":[{"filename":"README.md","content":"fixed"}]} Let me know.`
	payload := FileEdit(text, false)
	require.NotNil(t, payload)
	assert.Equal(t, "fix typo", payload.Summary)
}

func TestFileEditTopLevelArray(t *testing.T) {
	payload := FileEdit(`[{"filename":"a","content":"1"},{"filename":"b","content":"2"}]`, true)
	require.NotNil(t, payload)
	assert.Len(t, payload.Files, 2)

	// Arrays of anything else are not file edits.
	assert.Nil(t, FileEdit(`[1,2,3]`, true))
	assert.Nil(t, FileEdit(`[{"filename":"a","content":"1"},{"name":"b"}]`, true))
}

func TestFileEditConfidenceRules(t *testing.T) {
	// Shape alone, no attachments, no summary: 0.5 + 0.2 complete
	// entries = 0.7, below the threshold.
	assert.Nil(t, FileEdit(`{"files":[{"filename":"a","content":"x"}]}`, false))

	// Adding a summary reaches 0.8 without attachments.
	payload := FileEdit(`{"summary":"s","files":[{"filename":"a","content":"x"}]}`, false)
	assert.NotNil(t, payload)

	// Attachments plus any file content accepts outright even with
	// incomplete entries.
	payload = FileEdit(`{"files":[{"filename":"","content":"x"}]}`, true)
	assert.NotNil(t, payload)

	// Attachments with empty content but a summary still accepts via
	// summary co-occurrence.
	payload = FileEdit(`{"summary":"nothing to change","files":[{"filename":"a","content":""}]}`, true)
	assert.NotNil(t, payload)
}

func TestFileEditEscapedQuotesInContent(t *testing.T) {
	text := `{"files":[{"filename":"a.json","content":"{\"nested\": \"value with } brace\"}"}]}`
	payload := FileEdit(text, true)
	require.NotNil(t, payload)
	assert.Contains(t, payload.Files[0].Content, "nested")
}

func TestFileEditWidestSpanWins(t *testing.T) {
	// The inner object is also balanced; the whole payload must win.
	text := `noise {"summary":"s","files":[{"filename":"a","content":"b"}]} noise`
	payload := FileEdit(text, false)
	require.NotNil(t, payload)
	assert.Equal(t, "s", payload.Summary)
	assert.Len(t, payload.Files, 1)
}

func TestFileEditEmptyFilesArrayIgnored(t *testing.T) {
	assert.Nil(t, FileEdit(`{"files":[]}`, true))
}
