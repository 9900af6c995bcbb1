package llm

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeModelNames(t *testing.T) {
	t.Run("collapses variants to clean base", func(t *testing.T) {
		names := []string{"gpt-4", "gpt-4-preview", "gpt-4-preview-2024-01-01"}
		assert.Equal(t, []string{"gpt-4"}, NormalizeModelNames(names))
	})

	t.Run("keeps first variant when no clean id exists", func(t *testing.T) {
		names := []string{"gemini-pro-latest", "gemini-pro-001"}
		assert.Equal(t, []string{"gemini-pro-latest"}, NormalizeModelNames(names))
	})

	t.Run("strips stacked suffixes", func(t *testing.T) {
		// -preview-2024-01-01 peels off in two rounds
		names := []string{"o1-preview-2024-01-01"}
		assert.Equal(t, []string{"o1-preview-2024-01-01"}, NormalizeModelNames(names))

		names = []string{"o1", "o1-preview-2024-01-01"}
		assert.Equal(t, []string{"o1"}, NormalizeModelNames(names))
	})

	t.Run("sorts case-insensitively", func(t *testing.T) {
		names := []string{"Zeta", "alpha", "Beta"}
		assert.Equal(t, []string{"alpha", "Beta", "Zeta"}, NormalizeModelNames(names))
	})

	t.Run("dedupes case-insensitively", func(t *testing.T) {
		names := []string{"llama3", "Llama3"}
		assert.Len(t, NormalizeModelNames(names), 1)
	})

	t.Run("drops empty names", func(t *testing.T) {
		assert.Empty(t, NormalizeModelNames([]string{""}))
	})
}

func TestFilterModelNames(t *testing.T) {
	exclude := []*regexp.Regexp{regexp.MustCompile(`embed|vision`)}
	names := []string{"gpt-4", "text-embed-3", "gpt-4-vision", "llama3"}
	assert.Equal(t, []string{"gpt-4", "llama3"}, FilterModelNames(names, exclude))
}
