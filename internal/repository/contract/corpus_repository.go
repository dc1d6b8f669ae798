package contract

import (
	"context"
	"errors"

	"bookchat-be/internal/entity"
)

var (
	// ErrCollectionNotFound signals that a book has never been prepared.
	// The chat orchestrator treats this as a trigger for on-demand
	// preparation; no other component is allowed to self-heal on it.
	ErrCollectionNotFound = errors.New("corpus collection not found")

	// ErrIndexWrite wraps storage failures during upsert.
	ErrIndexWrite = errors.New("corpus index write failed")
)

// CorpusRepository is the persisted per-book vector index: it maps chunk ids
// to (text, embedding, metadata) and answers nearest-neighbor queries.
type CorpusRepository interface {
	// CreateOrGet ensures a collection exists for the book. Idempotent.
	CreateOrGet(ctx context.Context, bookId string) error

	// Upsert stores chunks keyed by their deterministic chunk ids.
	// Re-running with identical inputs must not duplicate entries.
	Upsert(ctx context.Context, bookId string, chunks []*entity.BookChunk) error

	// Query returns the k chunks most similar to the query embedding,
	// ordered by similarity with ties broken by chunk ordinal. Returns
	// ErrCollectionNotFound if the book was never prepared.
	Query(ctx context.Context, bookId string, embedding []float32, k int) ([]*entity.BookChunk, error)

	// ExistsAndNonEmpty reports whether a queryable, non-empty collection
	// exists for the book. This is the "is this book ready" predicate.
	ExistsAndNonEmpty(ctx context.Context, bookId string) (bool, error)

	// Count returns the number of chunks stored for the book.
	Count(ctx context.Context, bookId string) (int64, error)
}
