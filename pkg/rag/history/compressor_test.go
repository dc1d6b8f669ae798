package history

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.reply, f.err
}

func TestCompressUsesSummary(t *testing.T) {
	c := NewCompressor(&fakeLLM{reply: "A short summary."})

	got := c.Compress(context.Background(), strings.Repeat("long answer ", 50))
	assert.Equal(t, "A short summary.", got)
}

func TestCompressFallbackOnError(t *testing.T) {
	c := NewCompressor(&fakeLLM{err: errors.New("model unavailable")})

	got := c.Compress(context.Background(), strings.Repeat("A", 500))
	assert.LessOrEqual(t, len(got), 103)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestCompressFallbackShortAnswerUntouched(t *testing.T) {
	c := NewCompressor(&fakeLLM{err: errors.New("down")})

	got := c.Compress(context.Background(), "The cat sat.")
	assert.Equal(t, "The cat sat.", got)
}

func TestCompressFallbackOnBlankSummary(t *testing.T) {
	c := NewCompressor(&fakeLLM{reply: "   "})

	got := c.Compress(context.Background(), strings.Repeat("B", 200))
	assert.LessOrEqual(t, len(got), 103)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestCompressNilProvider(t *testing.T) {
	c := NewCompressor(nil)

	got := c.Compress(context.Background(), strings.Repeat("C", 200))
	assert.True(t, strings.HasSuffix(got, "..."))
}
