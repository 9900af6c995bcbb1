package parse

import "strings"

// thinkingMarker is one way a model opens scratch reasoning output.
// Markers with a close tag hide only the enclosed span once the close
// arrives; until then, and for markers without a close, everything from
// the marker onward is withheld.
type thinkingMarker struct {
	open  string
	close string
	// linePrefix markers only match at the start of a line.
	linePrefix bool
}

var thinkingMarkers = []thinkingMarker{
	{open: "<think>", close: "</think>"},
	{open: "<thinking>", close: "</thinking>"},
	{open: "thinking:", linePrefix: true},
}

// scrubThinking removes thinking content from text. Closed spans are
// cut out entirely; an unclosed span is withheld to the end of the
// buffer because a streaming model may still be inside it. A trailing
// fragment of an open tag (the buffer ends mid-marker) is withheld the
// same way so it never flashes as visible text.
func scrubThinking(text string) string {
	var out strings.Builder
	rest := text
	for {
		pos, marker := firstThinkingMarker(rest)
		if pos < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:pos])

		if marker.close != "" {
			after := rest[pos+len(marker.open):]
			if j := indexFold(after, marker.close); j >= 0 {
				rest = after[j+len(marker.close):]
				continue
			}
		}
		break
	}
	return trimPartialTag(out.String())
}

// trimPartialTag drops a trailing fragment of a tag-style marker, such
// as a buffer ending in "<thin". Only fragments starting at a '<' are
// considered so ordinary prose is never touched.
func trimPartialTag(s string) string {
	for i := len(s) - 1; i >= 0 && len(s)-i < len("<thinking>"); i-- {
		if s[i] != '<' {
			continue
		}
		frag := strings.ToLower(s[i:])
		for _, marker := range thinkingMarkers {
			if marker.linePrefix {
				continue
			}
			if len(frag) < len(marker.open) && strings.HasPrefix(marker.open, frag) {
				return s[:i]
			}
		}
	}
	return s
}

// firstThinkingMarker finds the earliest marker occurrence in text.
func firstThinkingMarker(text string) (int, thinkingMarker) {
	best := -1
	var found thinkingMarker

	lower := strings.ToLower(text)
	for _, marker := range thinkingMarkers {
		var pos int
		if marker.linePrefix {
			pos = linePrefixIndex(lower, marker.open)
		} else {
			pos = strings.Index(lower, marker.open)
		}
		if pos >= 0 && (best < 0 || pos < best) {
			best = pos
			found = marker
		}
	}
	return best, found
}

// linePrefixIndex finds prefix at the start of a line, ignoring leading
// spaces, and returns the byte offset of the prefix itself.
func linePrefixIndex(lower, prefix string) int {
	offset := 0
	for {
		line := lower[offset:]
		end := len(line)
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			end = nl
		}

		lead := 0
		for lead < end && (line[lead] == ' ' || line[lead] == '\t') {
			lead++
		}
		if strings.HasPrefix(line[lead:end], prefix) {
			return offset + lead
		}

		if end == len(line) {
			return -1
		}
		offset += end + 1
	}
}

func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
