// Model catalog normalization
package llm

import (
	"regexp"
	"sort"
	"strings"
)

// variantSuffixes are stripped from the end of a model id, repeatedly,
// to find its base id. Order does not matter; stripping runs until no
// pattern applies.
var variantSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`-\d{4}-\d{2}-\d{2}$`), // dated: -2024-01-01
	regexp.MustCompile(`-\d{8}$`),             // dated: -20240101
	regexp.MustCompile(`-\d{4}$`),             // snapshot: -0613
	regexp.MustCompile(`-\d{3}$`),             // revision: -001
	regexp.MustCompile(`-preview$`),
	regexp.MustCompile(`-latest$`),
	regexp.MustCompile(`-exp$`),
	regexp.MustCompile(`-beta$`),
}

func baseModelID(name string) string {
	base := name
	for changed := true; changed; {
		changed = false
		for _, re := range variantSuffixes {
			trimmed := re.ReplaceAllString(base, "")
			if trimmed != base && trimmed != "" {
				base = trimmed
				changed = true
			}
		}
	}
	return base
}

// NormalizeModelNames collapses dated/preview/suffixed ids to one
// canonical id per base model, preferring the unsuffixed variant when
// the catalog lists it and otherwise the first suffixed variant
// encountered. The result is de-duplicated and sorted
// case-insensitively.
func NormalizeModelNames(names []string) []string {
	type group struct {
		clean bool
		first string
	}
	groups := make(map[string]*group)
	var order []string

	for _, name := range names {
		if name == "" {
			continue
		}
		base := baseModelID(name)
		g, ok := groups[base]
		if !ok {
			g = &group{}
			groups[base] = g
			order = append(order, base)
		}
		if name == base {
			g.clean = true
		} else if g.first == "" {
			g.first = name
		}
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(order))
	for _, base := range order {
		g := groups[base]
		name := g.first
		if g.clean {
			name = base
		}
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li == lj {
			return out[i] < out[j]
		}
		return li < lj
	})
	return out
}

// FilterModelNames drops names matching any of the exclusion patterns.
// Adapters use it to hide vision/embedding/instruct variants from the
// chat model picker.
func FilterModelNames(names []string, exclude []*regexp.Regexp) []string {
	out := make([]string, 0, len(names))
next:
	for _, name := range names {
		for _, re := range exclude {
			if re.MatchString(name) {
				continue next
			}
		}
		out = append(out, name)
	}
	return out
}
