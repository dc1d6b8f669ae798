package embedding

import "context"

// Task types understood by the Gemini embedding API. Other providers ignore
// them but accept the same values for interface compatibility.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings.
type EmbeddingProvider interface {
	// Embed maps a single text to a fixed-dimension vector.
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)

	// EmbedBatch maps a batch of texts to vectors. The result preserves the
	// input order: vector i belongs to texts[i].
	EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}
