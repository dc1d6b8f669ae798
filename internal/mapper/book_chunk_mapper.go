package mapper

import (
	"bookchat-be/internal/entity"
	"bookchat-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type BookChunkMapper struct{}

func NewBookChunkMapper() *BookChunkMapper {
	return &BookChunkMapper{}
}

func (m *BookChunkMapper) ToEntity(c *model.BookChunk) *entity.BookChunk {
	if c == nil {
		return nil
	}

	return &entity.BookChunk{
		ChunkId:   c.ChunkId,
		BookId:    c.BookId,
		Ordinal:   c.Ordinal,
		Document:  c.Document,
		Embedding: c.Embedding.Slice(),
		Source:    c.Source,
		CreatedAt: c.CreatedAt,
	}
}

func (m *BookChunkMapper) ToModel(c *entity.BookChunk) *model.BookChunk {
	if c == nil {
		return nil
	}

	return &model.BookChunk{
		ChunkId:   c.ChunkId,
		BookId:    c.BookId,
		Ordinal:   c.Ordinal,
		Document:  c.Document,
		Embedding: pgvector.NewVector(c.Embedding),
		Source:    c.Source,
		CreatedAt: c.CreatedAt,
	}
}

func (m *BookChunkMapper) ToEntities(chunks []*model.BookChunk) []*entity.BookChunk {
	entities := make([]*entity.BookChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *BookChunkMapper) ToModels(chunks []*entity.BookChunk) []*model.BookChunk {
	models := make([]*model.BookChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
