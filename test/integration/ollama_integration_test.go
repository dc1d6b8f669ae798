package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"bookchat-be/pkg/embedding"
	"bookchat-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	ollamaChatModel      = "gemma:2b"
	ollamaEmbeddingModel = "nomic-embed-text"
)

func ollamaBaseURL() string {
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		return url
	}
	return defaultOllamaBaseURL
}

// requireOllama skips the test when no local Ollama server is reachable.
func requireOllama(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ollamaBaseURL(), nil)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		t.Skipf("Skipping: Ollama not running at %s: %v", ollamaBaseURL(), err)
	}
	res.Body.Close()
}

func TestOllamaGenerate(t *testing.T) {
	requireOllama(t)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	provider := ollama.NewOllamaProvider(ollamaBaseURL(), ollamaChatModel)

	response, err := provider.Generate(ctx, "Say 'Ollama works!' in one sentence.")
	require.NoError(t, err)
	assert.NotEmpty(t, response)
	t.Logf("✅ Ollama response: %s", response)
}

func TestOllamaEmbedding(t *testing.T) {
	requireOllama(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	provider := embedding.NewOllamaProvider(ollamaBaseURL(), ollamaEmbeddingModel)

	vectors, err := provider.EmbedBatch(ctx, []string{
		"Call me Ishmael.",
		"It was the best of times.",
	}, embedding.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.NotEmpty(t, vectors[0])
	assert.Equal(t, len(vectors[0]), len(vectors[1]))
	t.Logf("✅ Embedding dimension: %d", len(vectors[0]))
}
