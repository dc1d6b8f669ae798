package implementation

import (
	"context"
	"fmt"

	"bookchat-be/internal/entity"
	"bookchat-be/internal/mapper"
	"bookchat-be/internal/model"
	"bookchat-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookChunkRepositoryImpl is the pgvector-backed corpus index. One logical
// collection per book_id, all rows in a single book_chunks table.
type BookChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookChunkMapper
}

func NewBookChunkRepository(db *gorm.DB) contract.CorpusRepository {
	return &BookChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookChunkMapper(),
	}
}

func (r *BookChunkRepositoryImpl) CreateOrGet(ctx context.Context, bookId string) error {
	// Collections are implicit in the table layout; nothing to create.
	return nil
}

func (r *BookChunkRepositoryImpl) Upsert(ctx context.Context, bookId string, chunks []*entity.BookChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := r.mapper.ToModels(chunks)

	// Deterministic chunk ids make this idempotent: re-preparing a book
	// overwrites the same rows instead of inserting duplicates.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chunk_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "embedding", "source", "ordinal"}),
	}).Create(models).Error
	if err != nil {
		return fmt.Errorf("%w: %v", contract.ErrIndexWrite, err)
	}
	return nil
}

func (r *BookChunkRepositoryImpl) Query(ctx context.Context, bookId string, embedding []float32, k int) ([]*entity.BookChunk, error) {
	if k <= 0 {
		k = 3
	}

	exists, err := r.ExistsAndNonEmpty(ctx, bookId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, contract.ErrCollectionNotFound
	}

	var models []*model.BookChunk

	// Cosine distance ordering; ordinal breaks ties deterministically.
	err = r.db.WithContext(ctx).
		Where("book_id = ?", bookId).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <=> ?, ordinal ASC",
			Vars: []interface{}{pgvector.NewVector(embedding)},
		}}).
		Limit(k).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(models), nil
}

func (r *BookChunkRepositoryImpl) ExistsAndNonEmpty(ctx context.Context, bookId string) (bool, error) {
	count, err := r.Count(ctx, bookId)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookChunkRepositoryImpl) Count(ctx context.Context, bookId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BookChunk{}).
		Where("book_id = ?", bookId).
		Count(&count).Error
	return count, err
}
