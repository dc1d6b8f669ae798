package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookchat-be/internal/constant"
	"bookchat-be/internal/entity"
	"bookchat-be/internal/pkg/logger"
	"bookchat-be/internal/repository/contract"
	"bookchat-be/pkg/chunker"
	"bookchat-be/pkg/embedding"
	"bookchat-be/pkg/events"
	pktNats "bookchat-be/pkg/nats"
)

// ErrEmbeddingFailure wraps upstream embedding-model failures during
// preparation or retrieval. Non-fatal to the caller, which may retry.
var ErrEmbeddingFailure = errors.New("embedding model call failed")

// ICorpusService materializes a book's searchable corpus and answers
// similarity queries against it.
type ICorpusService interface {
	// Prepare chunks text, embeds all chunks in one batch and upserts them
	// under bookId. Idempotent: repeated calls converge to the same stored
	// state. Returns the number of chunks stored.
	Prepare(ctx context.Context, bookId string, text string) (int, error)

	// Exists is the cheap "is this book ready" predicate.
	Exists(ctx context.Context, bookId string) (bool, error)

	// Retrieve embeds the question and returns the top-k most similar chunk
	// texts. An unprepared book surfaces contract.ErrCollectionNotFound;
	// this service never self-heals on it.
	Retrieve(ctx context.Context, bookId string, question string, k int) ([]string, error)
}

type corpusService struct {
	corpusRepo        contract.CorpusRepository
	embeddingProvider embedding.EmbeddingProvider
	natsPub           *pktNats.Publisher
	sysLogger         logger.ILogger
	chunkSize         int

	// Per-book preparation guard: two requests racing on the same cold book
	// should chunk and embed once, not twice. Upsert idempotence makes the
	// race harmless either way; the lock just avoids paying twice.
	mu        sync.Mutex
	preparing map[string]*sync.Mutex
}

func NewCorpusService(
	corpusRepo contract.CorpusRepository,
	embeddingProvider embedding.EmbeddingProvider,
	natsPub *pktNats.Publisher,
	sysLogger logger.ILogger,
	chunkSize int,
) ICorpusService {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	return &corpusService{
		corpusRepo:        corpusRepo,
		embeddingProvider: embeddingProvider,
		natsPub:           natsPub,
		sysLogger:         sysLogger,
		chunkSize:         chunkSize,
		preparing:         make(map[string]*sync.Mutex),
	}
}

func (cs *corpusService) lockFor(bookId string) *sync.Mutex {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	l, ok := cs.preparing[bookId]
	if !ok {
		l = &sync.Mutex{}
		cs.preparing[bookId] = l
	}
	return l
}

func (cs *corpusService) Prepare(ctx context.Context, bookId string, text string) (int, error) {
	lock := cs.lockFor(bookId)
	lock.Lock()
	defer lock.Unlock()

	chunks, err := chunker.Split(text, cs.chunkSize)
	if err != nil {
		return 0, err
	}

	vectors, err := cs.embeddingProvider.EmbedBatch(ctx, chunks, embedding.TaskRetrievalDocument)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}

	now := time.Now()
	bookChunks := make([]*entity.BookChunk, len(chunks))
	for i, chunk := range chunks {
		bookChunks[i] = &entity.BookChunk{
			ChunkId:   entity.ChunkId(bookId, i),
			BookId:    bookId,
			Ordinal:   i,
			Document:  chunk,
			Embedding: vectors[i],
			Source:    constant.ChunkSourceWiki,
			CreatedAt: now,
		}
	}

	if err := cs.corpusRepo.CreateOrGet(ctx, bookId); err != nil {
		return 0, fmt.Errorf("%w: %v", contract.ErrIndexWrite, err)
	}
	if err := cs.corpusRepo.Upsert(ctx, bookId, bookChunks); err != nil {
		return 0, err
	}

	cs.sysLogger.Info("corpus", "book corpus prepared", map[string]interface{}{
		"book_id":       bookId,
		"chunks_stored": len(bookChunks),
	})

	if err := cs.natsPub.Publish(ctx, events.CorpusPrepared(bookId, len(bookChunks))); err != nil {
		cs.sysLogger.Warn("corpus", "failed to publish corpus prepared event", map[string]interface{}{
			"book_id": bookId,
			"error":   err.Error(),
		})
	}

	return len(bookChunks), nil
}

func (cs *corpusService) Exists(ctx context.Context, bookId string) (bool, error) {
	return cs.corpusRepo.ExistsAndNonEmpty(ctx, bookId)
}

func (cs *corpusService) Retrieve(ctx context.Context, bookId string, question string, k int) ([]string, error) {
	vector, err := cs.embeddingProvider.Embed(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}

	results, err := cs.corpusRepo.Query(ctx, bookId, vector, k)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Document
	}
	return texts, nil
}
