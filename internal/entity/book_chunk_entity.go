package entity

import (
	"fmt"
	"time"
)

// BookChunk is one fixed-size passage of a book's source text together with
// its embedding. Chunks are immutable once created and exclusively owned by
// their book's corpus.
type BookChunk struct {
	ChunkId   string
	BookId    string
	Ordinal   int
	Document  string
	Embedding []float32
	Source    string
	CreatedAt time.Time
}

// ChunkId derives the stable identifier for a chunk from its book and
// position. Re-running preparation yields the same ids, which is what makes
// upserts idempotent.
func ChunkId(bookId string, ordinal int) string {
	return fmt.Sprintf("%s_%d", bookId, ordinal)
}
