package prompt

import (
	"strings"
	"testing"

	"bookchat-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSectionOrder(t *testing.T) {
	meta := &dto.BookMetadata{
		Title:         "The Hobbit",
		Authors:       []string{"J.R.R. Tolkien"},
		Description:   "A hobbit goes on an adventure.",
		Categories:    []string{"Fantasy", "Adventure"},
		PublishedDate: "1937",
	}
	history := []string{"User: hi", "Bot: hello"}
	contexts := []string{"Bilbo lived in a hole.", "Gandalf arrived."}

	out := NewBookPromptBuilder(meta, history, contexts, "Who is the protagonist?").Build()

	sections := []string{
		"Book Metadata:",
		"Title: The Hobbit",
		"Author(s): J.R.R. Tolkien",
		"Categories: Fantasy, Adventure",
		"Conversation so far:",
		"User: hi\nBot: hello",
		"Relevant context from the book:",
		"Bilbo lived in a hole.\n\nGandalf arrived.",
		"Current question:",
		"Who is the protagonist?",
		"Answer concisely in 2-3 sentences",
	}

	last := -1
	for _, section := range sections {
		idx := strings.Index(out, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestBuildMissingMetadataRendersEmpty(t *testing.T) {
	out := NewBookPromptBuilder(nil, nil, []string{"ctx"}, "q").Build()

	assert.Contains(t, out, "Title: \n")
	assert.Contains(t, out, "Author(s): \n")
	assert.Contains(t, out, "Published: \n")
	assert.NotContains(t, out, "<nil>")
	assert.NotContains(t, out, "null")
}

func TestBuildEmptyHistoryPlaceholder(t *testing.T) {
	out := NewBookPromptBuilder(&dto.BookMetadata{Title: "X"}, nil, []string{"ctx"}, "q").Build()
	assert.Contains(t, out, "No previous conversation.")
}

func TestBuildDeterministic(t *testing.T) {
	meta := &dto.BookMetadata{Title: "X", Authors: []string{"A", "B"}}
	first := NewBookPromptBuilder(meta, []string{"User: a"}, []string{"c1", "c2"}, "q").Build()
	second := NewBookPromptBuilder(meta, []string{"User: a"}, []string{"c1", "c2"}, "q").Build()
	assert.Equal(t, first, second)
}
