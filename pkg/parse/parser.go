package parse

import "strings"

// ThinkingPlaceholder is the text of the transient block emitted while
// nothing visible has arrived yet.
const ThinkingPlaceholder = "Thinking…"

// Parser carries the anti-flicker state for one streaming response:
// the last successfully cleaned text. Create one per response, or call
// Reset between responses.
type Parser struct {
	lastClean string
}

// NewParser creates a parser for one response stream.
func NewParser() *Parser {
	return &Parser{}
}

// Reset clears the remembered visible text between responses.
func (p *Parser) Reset() {
	p.lastClean = ""
}

// Parse scrubs thinking content from the full buffer and decomposes
// what remains into blocks. Safe to call on every delta of a growing
// buffer: within one response the visible text never shrinks, so
// content cannot flash and then disappear when a later thinking marker
// arrives.
func (p *Parser) Parse(text string) []Block {
	visible := p.scrub(text)

	if strings.TrimSpace(visible) == "" {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []Block{{Type: BlockThinking, Text: ThinkingPlaceholder}}
	}
	return Blocks(visible)
}

// scrub applies the thinking filter and the monotonicity rule: when a
// newly arrived marker would shrink visible text below what was already
// rendered, and the raw buffer still contains the remembered text, the
// remembered text keeps rendering instead.
func (p *Parser) scrub(text string) string {
	cleaned := scrubThinking(text)

	if len(cleaned) < len(p.lastClean) {
		if strings.Contains(text, p.lastClean) {
			return p.lastClean
		}
		// The buffer was replaced wholesale; forget the old response.
		p.lastClean = cleaned
		return cleaned
	}

	p.lastClean = cleaned
	return cleaned
}
