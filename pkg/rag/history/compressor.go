package history

import (
	"context"
	"strings"

	"bookchat-be/internal/constant"
	"bookchat-be/pkg/llm"
)

// DefaultTruncateLimit is the rune cap for the deterministic fallback.
const DefaultTruncateLimit = 100

const truncationMarker = "..."

// Compressor shortens a full answer to a one-line summary for the
// conversation history. Summarization goes through the LLM; any failure
// falls back to truncation, so Compress never fails.
type Compressor struct {
	llmProvider llm.LLMProvider
	limit       int
}

func NewCompressor(llmProvider llm.LLMProvider) *Compressor {
	return &Compressor{
		llmProvider: llmProvider,
		limit:       DefaultTruncateLimit,
	}
}

func (c *Compressor) Compress(ctx context.Context, answer string) string {
	if c.llmProvider != nil {
		summary, err := c.llmProvider.Generate(
			ctx,
			constant.CompressPromptPrefix+answer,
			llm.WithTemperature(0.2),
		)
		if err == nil {
			if s := strings.TrimSpace(summary); s != "" {
				return s
			}
		}
	}

	return c.truncate(answer)
}

func (c *Compressor) truncate(answer string) string {
	runes := []rune(answer)
	if len(runes) <= c.limit {
		return answer
	}
	return string(runes[:c.limit]) + truncationMarker
}
