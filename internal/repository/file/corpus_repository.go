package file

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"bookchat-be/internal/entity"
	"bookchat-be/internal/repository/contract"
)

const corpusFileName = "corpus.json"

// CorpusRepositoryImpl persists one collection per book as a directory under
// a fixed root path. Durable across restarts; writes are committed with a
// temp-file rename so concurrent readers of the store never observe a
// half-written corpus.
type CorpusRepositoryImpl struct {
	mu      sync.RWMutex
	rootDir string
}

type storedChunk struct {
	ChunkId   string    `json:"chunk_id"`
	Ordinal   int       `json:"ordinal"`
	Document  string    `json:"document"`
	Embedding []float32 `json:"embedding"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type storedCorpus struct {
	BookId string        `json:"book_id"`
	Chunks []storedChunk `json:"chunks"`
}

func NewCorpusRepository(rootDir string) (contract.CorpusRepository, error) {
	if rootDir == "" {
		rootDir = "./vectorstore"
	}
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("creating vectorstore root: %w", err)
	}
	return &CorpusRepositoryImpl{rootDir: rootDir}, nil
}

func (r *CorpusRepositoryImpl) corpusPath(bookId string) string {
	return filepath.Join(r.rootDir, bookId, corpusFileName)
}

func (r *CorpusRepositoryImpl) CreateOrGet(ctx context.Context, bookId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return os.MkdirAll(filepath.Dir(r.corpusPath(bookId)), 0755)
}

// load reads the committed corpus for a book. Must be called with the lock held.
func (r *CorpusRepositoryImpl) load(bookId string) (*storedCorpus, error) {
	data, err := os.ReadFile(r.corpusPath(bookId))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, contract.ErrCollectionNotFound
		}
		return nil, err
	}

	var corpus storedCorpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("decoding corpus for %s: %w", bookId, err)
	}
	return &corpus, nil
}

// save commits the corpus atomically: write to a temp file in the same
// directory, then rename over the old file.
func (r *CorpusRepositoryImpl) save(bookId string, corpus *storedCorpus) error {
	path := r.corpusPath(bookId)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(corpus)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), corpusFileName+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

func (r *CorpusRepositoryImpl) Upsert(ctx context.Context, bookId string, chunks []*entity.BookChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	corpus, err := r.load(bookId)
	if err != nil {
		if err != contract.ErrCollectionNotFound {
			return fmt.Errorf("%w: %v", contract.ErrIndexWrite, err)
		}
		corpus = &storedCorpus{BookId: bookId}
	}

	// Dedupe by chunk id: identical reruns converge to the same stored state.
	byId := make(map[string]int, len(corpus.Chunks))
	for i, c := range corpus.Chunks {
		byId[c.ChunkId] = i
	}

	for _, c := range chunks {
		sc := storedChunk{
			ChunkId:   c.ChunkId,
			Ordinal:   c.Ordinal,
			Document:  c.Document,
			Embedding: c.Embedding,
			Source:    c.Source,
			CreatedAt: c.CreatedAt,
		}
		if i, ok := byId[c.ChunkId]; ok {
			corpus.Chunks[i] = sc
		} else {
			byId[c.ChunkId] = len(corpus.Chunks)
			corpus.Chunks = append(corpus.Chunks, sc)
		}
	}

	sort.Slice(corpus.Chunks, func(i, j int) bool {
		return corpus.Chunks[i].Ordinal < corpus.Chunks[j].Ordinal
	})

	if err := r.save(bookId, corpus); err != nil {
		return fmt.Errorf("%w: %v", contract.ErrIndexWrite, err)
	}
	return nil
}

func (r *CorpusRepositoryImpl) Query(ctx context.Context, bookId string, embedding []float32, k int) ([]*entity.BookChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	corpus, err := r.load(bookId)
	if err != nil {
		return nil, err
	}
	if len(corpus.Chunks) == 0 {
		return nil, contract.ErrCollectionNotFound
	}

	type scored struct {
		chunk storedChunk
		score float64
	}

	results := make([]scored, 0, len(corpus.Chunks))
	for _, c := range corpus.Chunks {
		results = append(results, scored{chunk: c, score: cosineSimilarity(embedding, c.Embedding)})
	}

	// Sort by similarity descending; equal scores fall back to corpus order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].chunk.Ordinal < results[j].chunk.Ordinal
	})

	if k > len(results) {
		k = len(results)
	}

	out := make([]*entity.BookChunk, k)
	for i := 0; i < k; i++ {
		c := results[i].chunk
		out[i] = &entity.BookChunk{
			ChunkId:   c.ChunkId,
			BookId:    bookId,
			Ordinal:   c.Ordinal,
			Document:  c.Document,
			Embedding: c.Embedding,
			Source:    c.Source,
			CreatedAt: c.CreatedAt,
		}
	}
	return out, nil
}

func (r *CorpusRepositoryImpl) ExistsAndNonEmpty(ctx context.Context, bookId string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	corpus, err := r.load(bookId)
	if err != nil {
		if err == contract.ErrCollectionNotFound {
			return false, nil
		}
		return false, err
	}
	return len(corpus.Chunks) > 0, nil
}

func (r *CorpusRepositoryImpl) Count(ctx context.Context, bookId string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	corpus, err := r.load(bookId)
	if err != nil {
		if err == contract.ErrCollectionNotFound {
			return 0, nil
		}
		return 0, err
	}
	return int64(len(corpus.Chunks)), nil
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
