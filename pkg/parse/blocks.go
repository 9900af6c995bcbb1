package parse

import "strings"

// BlockType tags one renderable block.
type BlockType string

const (
	BlockText          BlockType = "text"
	BlockHeading       BlockType = "heading"
	BlockQuote         BlockType = "blockquote"
	BlockOrderedList   BlockType = "ordered_list"
	BlockUnorderedList BlockType = "unordered_list"
	BlockCode          BlockType = "code"
	BlockRule          BlockType = "rule"

	// BlockThinking is the transient placeholder shown while the model
	// has produced nothing visible yet.
	BlockThinking BlockType = "thinking"
)

// Block is one typed span of the response, in source order.
type Block struct {
	Type BlockType

	// Text carries the body for text, heading, blockquote, code and
	// thinking blocks.
	Text string

	// Level is the heading depth, 1-6.
	Level int

	// Items holds list entries. Ordered items keep their original
	// numeric prefix; unordered items are stored bare and rendered with
	// one normalized bullet glyph.
	Items []string

	// Language is the code fence tag, possibly empty.
	Language string
}

// Blocks decomposes text into ordered blocks. Pure and deterministic:
// identical input yields identical output, so it is safe to re-run on
// every delta of a growing buffer.
func Blocks(text string) []Block {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var blocks []Block
	var para []string

	flush := func() {
		if len(para) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(para, "\n"))
		para = nil
		if joined != "" {
			blocks = append(blocks, Block{Type: BlockText, Text: joined})
		}
	}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])

		// Fenced code spans to the matching fence or end of buffer, so
		// an unterminated fence streams as a growing code block.
		if strings.HasPrefix(trimmed, "```") {
			flush()
			language := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			var body []string
			for i++; i < len(lines); i++ {
				if strings.TrimSpace(lines[i]) == "```" {
					break
				}
				body = append(body, lines[i])
			}
			blocks = append(blocks, Block{
				Type:     BlockCode,
				Language: language,
				Text:     strings.Join(body, "\n"),
			})
			continue
		}

		if level, heading, ok := headingLine(trimmed); ok {
			flush()
			blocks = append(blocks, Block{Type: BlockHeading, Level: level, Text: heading})
			continue
		}

		if isRuleLine(trimmed) {
			flush()
			blocks = append(blocks, Block{Type: BlockRule})
			continue
		}

		if strings.HasPrefix(trimmed, ">") {
			flush()
			var quote []string
			for ; i < len(lines); i++ {
				t := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(t, ">") {
					i--
					break
				}
				quote = append(quote, strings.TrimPrefix(strings.TrimPrefix(t, ">"), " "))
			}
			blocks = append(blocks, Block{Type: BlockQuote, Text: strings.Join(quote, "\n")})
			continue
		}

		if isOrderedItem(trimmed) {
			flush()
			var items []string
			for ; i < len(lines); i++ {
				t := strings.TrimSpace(lines[i])
				if !isOrderedItem(t) {
					i--
					break
				}
				items = append(items, t)
			}
			blocks = append(blocks, Block{Type: BlockOrderedList, Items: items})
			continue
		}

		if isUnorderedItem(trimmed) {
			flush()
			var items []string
			for ; i < len(lines); i++ {
				t := strings.TrimSpace(lines[i])
				if !isUnorderedItem(t) {
					i--
					break
				}
				items = append(items, strings.TrimSpace(t[1:]))
			}
			blocks = append(blocks, Block{Type: BlockUnorderedList, Items: items})
			continue
		}

		para = append(para, lines[i])
	}

	flush()
	return blocks
}

// headingLine matches 1-6 leading # followed by a space.
func headingLine(s string) (int, string, bool) {
	level := 0
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(s) || s[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(s[level:]), true
}

// isRuleLine matches 3+ repeats of one of - * _ alone on a line.
func isRuleLine(s string) bool {
	if len(s) < 3 {
		return false
	}
	ch := s[0]
	if ch != '-' && ch != '*' && ch != '_' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != ch {
			return false
		}
	}
	return true
}

// isOrderedItem matches an "N. " prefix.
func isOrderedItem(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i+1 < len(s) && s[i] == '.' && s[i+1] == ' '
}

// isUnorderedItem matches a "- ", "* " or "+ " prefix.
func isUnorderedItem(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '-' || s[0] == '*' || s[0] == '+') && s[1] == ' '
}
