package file

import (
	"context"
	"testing"
	"time"

	"bookchat-be/internal/entity"
	"bookchat-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) contract.CorpusRepository {
	t.Helper()
	repo, err := NewCorpusRepository(t.TempDir())
	require.NoError(t, err)
	return repo
}

func testChunks(bookId string, vectors ...[]float32) []*entity.BookChunk {
	chunks := make([]*entity.BookChunk, len(vectors))
	for i, v := range vectors {
		chunks[i] = &entity.BookChunk{
			ChunkId:   entity.ChunkId(bookId, i),
			BookId:    bookId,
			Ordinal:   i,
			Document:  "chunk " + entity.ChunkId(bookId, i),
			Embedding: v,
			Source:    "wiki",
			CreatedAt: time.Now(),
		}
	}
	return chunks
}

func TestQueryUnpreparedBook(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Query(context.Background(), "never-prepared", []float32{1, 0}, 3)
	assert.ErrorIs(t, err, contract.ErrCollectionNotFound)

	exists, err := repo.ExistsAndNonEmpty(context.Background(), "never-prepared")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunks := testChunks("bk1", []float32{1, 0}, []float32{0, 1}, []float32{0.5, 0.5})

	require.NoError(t, repo.Upsert(ctx, "bk1", chunks))
	require.NoError(t, repo.Upsert(ctx, "bk1", chunks))

	count, err := repo.Count(ctx, "bk1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	exists, err := repo.ExistsAndNonEmpty(ctx, "bk1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestQueryOrderingAndDeterminism(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Ordinal 1 is closest to the query vector, ordinal 0 second.
	chunks := testChunks("bk2",
		[]float32{0.7, 0.7},
		[]float32{1, 0},
		[]float32{0, 1},
	)
	require.NoError(t, repo.Upsert(ctx, "bk2", chunks))

	query := []float32{1, 0}

	first, err := repo.Query(ctx, "bk2", query, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, first[0].Ordinal)
	assert.Equal(t, 0, first[1].Ordinal)

	// Repeated calls return the same ordered result.
	for i := 0; i < 5; i++ {
		again, err := repo.Query(ctx, "bk2", query, 2)
		require.NoError(t, err)
		require.Len(t, again, 2)
		assert.Equal(t, first[0].ChunkId, again[0].ChunkId)
		assert.Equal(t, first[1].ChunkId, again[1].ChunkId)
	}
}

func TestQueryTieBrokenByOrdinal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Identical embeddings: similarity ties, original order decides.
	chunks := testChunks("bk3",
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{1, 0},
	)
	require.NoError(t, repo.Upsert(ctx, "bk3", chunks))

	results, err := repo.Query(ctx, "bk3", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Ordinal)
	}
}

func TestKLargerThanCorpus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "bk4", testChunks("bk4", []float32{1, 0})))

	results, err := repo.Query(ctx, "bk4", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestPersistenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewCorpusRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, "bk5", testChunks("bk5", []float32{1, 0}, []float32{0, 1})))

	// New repository instance over the same root sees committed state.
	reopened, err := NewCorpusRepository(dir)
	require.NoError(t, err)

	exists, err := reopened.ExistsAndNonEmpty(ctx, "bk5")
	require.NoError(t, err)
	assert.True(t, exists)

	results, err := reopened.Query(ctx, "bk5", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bk5_0", results[0].ChunkId)
	assert.Equal(t, "chunk bk5_0", results[0].Document)
}

func TestCountUnknownBookIsZero(t *testing.T) {
	repo := newTestRepo(t)

	count, err := repo.Count(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}
