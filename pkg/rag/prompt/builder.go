package prompt

import (
	"strings"

	"bookchat-be/internal/constant"
	"bookchat-be/internal/dto"
)

// BookPromptBuilder assembles the generation prompt from metadata, prior
// conversation, retrieved context and the current question. Pure: same
// inputs always produce the same prompt.
type BookPromptBuilder struct {
	metadata *dto.BookMetadata
	history  []string
	contexts []string
	question string
}

func NewBookPromptBuilder(metadata *dto.BookMetadata, history []string, contexts []string, question string) *BookPromptBuilder {
	return &BookPromptBuilder{
		metadata: metadata,
		history:  history,
		contexts: contexts,
		question: question,
	}
}

// Build concatenates the prompt sections in fixed order: metadata block,
// conversation history, retrieved context, current question, instruction.
func (b *BookPromptBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("You are a helpful assistant that answers questions about books.\n\n")

	b.writeMetadataBlock(&prompt)
	b.writeHistory(&prompt)
	b.writeBookContext(&prompt)
	b.writeQuestion(&prompt)

	prompt.WriteString("Answer concisely in 2-3 sentences, based on the context and metadata.")

	return prompt.String()
}

// writeMetadataBlock renders missing fields as empty strings, never as a
// null/nil textual form.
func (b *BookPromptBuilder) writeMetadataBlock(prompt *strings.Builder) {
	meta := b.metadata
	if meta == nil {
		meta = &dto.BookMetadata{}
	}

	prompt.WriteString("Book Metadata:\n")
	prompt.WriteString("Title: " + meta.Title + "\n")
	prompt.WriteString("Author(s): " + strings.Join(meta.Authors, ", ") + "\n")
	prompt.WriteString("Description: " + meta.Description + "\n")
	prompt.WriteString("Categories: " + strings.Join(meta.Categories, ", ") + "\n")
	prompt.WriteString("Published: " + meta.PublishedDate + "\n\n")
}

func (b *BookPromptBuilder) writeHistory(prompt *strings.Builder) {
	prompt.WriteString("Conversation so far:\n")
	if len(b.history) == 0 {
		prompt.WriteString(constant.EmptyHistoryPlaceholder)
	} else {
		prompt.WriteString(strings.Join(b.history, "\n"))
	}
	prompt.WriteString("\n\n")
}

func (b *BookPromptBuilder) writeBookContext(prompt *strings.Builder) {
	prompt.WriteString("Relevant context from the book:\n")
	prompt.WriteString(strings.Join(b.contexts, "\n\n"))
	prompt.WriteString("\n\n")
}

func (b *BookPromptBuilder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("Current question:\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\n")
}
