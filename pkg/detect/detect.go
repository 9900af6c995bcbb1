package detect

import (
	"encoding/json"
	"sort"
	"strings"
)

// File is one file entry inside a file-edit payload.
type File struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Path     string `json:"path,omitempty"`
}

// FileEditPayload is the structured form of a model response that edits
// or creates files.
type FileEditPayload struct {
	Summary string `json:"summary,omitempty"`
	Files   []File `json:"files"`
}

// Confidence weights are empirically tuned; the rule ordering in accept
// (attachment-context match, then shape, then summary co-occurrence) is
// what carries the semantics.
const (
	baseConfidence       = 0.5
	attachmentBonus      = 0.2
	completeEntriesBonus = 0.2
	summaryBonus         = 0.1
	acceptThreshold      = 0.8
)

// FileEdit scans accumulated response text for an embedded file-edit
// payload. hadAttachments tells the detector whether the triggering
// request carried files, which lowers the bar for acceptance. A nil
// return means the text should render as ordinary content; detection
// never fails with an error.
func FileEdit(text string, hadAttachments bool) *FileEditPayload {
	for _, candidate := range candidates(text) {
		payload, ok := decodePayload([]byte(candidate))
		if !ok {
			continue
		}
		if accept(payload, hadAttachments) {
			return payload
		}
	}
	return nil
}

// candidates returns possible JSON spans in priority order: the whole
// text, fenced code block contents, balanced brace spans widest-first,
// then balanced bracket spans.
func candidates(text string) []string {
	var out []string
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		out = append(out, trimmed)
	}
	out = append(out, fencedCandidates(text)...)
	out = append(out, balancedSpans(text, '{', '}')...)
	out = append(out, balancedSpans(text, '[', ']')...)
	return out
}

// fencedCandidates extracts the contents of json-tagged or untagged
// fenced code blocks.
func fencedCandidates(text string) []string {
	var out []string
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}
		rest = rest[start+3:]
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			break
		}
		tag := strings.TrimSpace(rest[:nl])
		body := rest[nl+1:]

		var content string
		if end := strings.Index(body, "```"); end >= 0 {
			content = body[:end]
			rest = body[end+3:]
		} else {
			content = body
			rest = ""
		}

		if tag == "" || strings.EqualFold(tag, "json") {
			if c := strings.TrimSpace(content); c != "" {
				out = append(out, c)
			}
		}
		if rest == "" {
			break
		}
	}
	return out
}

// balancedSpans collects every balanced open..close span in the text,
// widest first. Delimiters inside quoted, escape-aware strings are
// ignored.
func balancedSpans(text string, open, close byte) []string {
	var spans []string
	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		if end := matchBalanced(text, i, open, close); end > i {
			spans = append(spans, text[i:end+1])
		}
	}
	sort.SliceStable(spans, func(a, b int) bool {
		return len(spans[a]) > len(spans[b])
	})
	return spans
}

// matchBalanced returns the index of the delimiter closing the span
// opened at start, or -1 when the span never balances.
func matchBalanced(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// decodePayload attempts a structural match of one candidate span:
// an object with a files array, a bare {filename, content} object
// normalized into a single-file payload, or a top-level array accepted
// only when every element is a {filename, content} object.
func decodePayload(candidate []byte) (*FileEditPayload, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(candidate, &obj); err == nil {
		if raw, ok := obj["files"]; ok {
			var files []File
			if err := json.Unmarshal(raw, &files); err == nil && len(files) > 0 {
				payload := &FileEditPayload{Files: files}
				if rawSummary, ok := obj["summary"]; ok {
					_ = json.Unmarshal(rawSummary, &payload.Summary)
				}
				return payload, true
			}
		}
		if hasKeys(obj, "filename", "content") {
			var f File
			if json.Unmarshal(candidate, &f) == nil && f.Filename != "" {
				return &FileEditPayload{
					Summary: "File: " + f.Filename,
					Files:   []File{f},
				}, true
			}
		}
		return nil, false
	}

	var arr []map[string]json.RawMessage
	if err := json.Unmarshal(candidate, &arr); err == nil && len(arr) > 0 {
		for _, entry := range arr {
			if !hasKeys(entry, "filename", "content") {
				return nil, false
			}
		}
		var files []File
		if json.Unmarshal(candidate, &files) == nil {
			return &FileEditPayload{Files: files}, true
		}
	}

	return nil, false
}

func hasKeys(obj map[string]json.RawMessage, keys ...string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	return true
}

// accept applies the acceptance rules in priority order: an attachment
// request producing actual file content wins outright, then the
// additive confidence score, then summary co-occurrence with
// attachments.
func accept(p *FileEditPayload, hadAttachments bool) bool {
	if hadAttachments && anyContent(p.Files) {
		return true
	}
	if confidence(p, hadAttachments) >= acceptThreshold {
		return true
	}
	if p.Summary != "" && hadAttachments {
		return true
	}
	return false
}

func confidence(p *FileEditPayload, hadAttachments bool) float64 {
	score := baseConfidence
	if hadAttachments && len(p.Files) > 0 {
		score += attachmentBonus
	}
	if entriesComplete(p.Files) {
		score += completeEntriesBonus
	}
	if p.Summary != "" && len(p.Files) > 0 {
		score += summaryBonus
	}
	return score
}

func anyContent(files []File) bool {
	for _, f := range files {
		if f.Content != "" {
			return true
		}
	}
	return false
}

func entriesComplete(files []File) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if f.Filename == "" || f.Content == "" {
			return false
		}
	}
	return true
}
