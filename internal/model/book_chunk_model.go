package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type BookChunk struct {
	ChunkId   string          `gorm:"primaryKey"`
	BookId    string          `gorm:"not null;index"`
	Ordinal   int             `gorm:"default:0"` // 0-based index for ordering
	Document  string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	Source    string          `gorm:"default:'wiki'"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (BookChunk) TableName() string {
	return "book_chunks"
}
