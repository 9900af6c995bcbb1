// Package parse turns a growing response buffer into ordered typed
// blocks for rendering. It runs two passes: a scrub pass that withholds
// model "thinking" scratch output, and a pure decomposition pass that
// splits the remaining text into code fences, headings, lists, quotes,
// rules and paragraphs. The scrub pass keeps per-response state so that
// visible content never shrinks mid-stream.
package parse
