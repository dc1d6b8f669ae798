package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"bookchat-be/internal/entity"
	"bookchat-be/internal/repository/implementation"
	"bookchat-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB")

	repo := implementation.NewBookChunkRepository(gormDB)

	t.Run("Check Corpus Table Access", func(t *testing.T) {
		// Count implies table and columns exist
		count, err := repo.Count(context.Background(), "integration-test-book")
		assert.NoError(t, err)
		t.Logf("Chunk count: %d", count)
	})

	t.Run("Upsert And Query Roundtrip", func(t *testing.T) {
		bookId := "integration-test-book"
		vec := make([]float32, 768)
		vec[0] = 1

		chunks := []*entity.BookChunk{
			{
				ChunkId:   entity.ChunkId(bookId, 0),
				BookId:    bookId,
				Ordinal:   0,
				Document:  "integration fixture chunk",
				Embedding: vec,
				Source:    "test",
			},
		}

		require.NoError(t, repo.Upsert(context.Background(), bookId, chunks))

		// Upsert again: deterministic ids must not duplicate rows
		require.NoError(t, repo.Upsert(context.Background(), bookId, chunks))
		count, err := repo.Count(context.Background(), bookId)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		results, err := repo.Query(context.Background(), bookId, vec, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "integration fixture chunk", results[0].Document)

		// Cleanup
		gormDB.Exec("DELETE FROM book_chunks WHERE book_id = ?", bookId)
	})
}
