// Package detect decides whether accumulated model output embeds a
// structured file-edit payload. Model responses rarely arrive as clean
// JSON, so detection tries progressively looser extractions (whole
// text, fenced code blocks, balanced brace and bracket spans) and only
// trusts a structural match once confidence heuristics clear a
// threshold. JSON shape alone is never sufficient.
package detect
