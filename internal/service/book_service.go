package service

import (
	"context"

	"bookchat-be/internal/dto"
	"bookchat-be/internal/pkg/logger"
	"bookchat-be/internal/repository/memory"
	"bookchat-be/pkg/books"
)

// IBookService exposes the Google Books catalog with an in-process
// metadata cache in front of it.
type IBookService interface {
	GetMetadata(ctx context.Context, bookId string) (*dto.BookMetadata, error)
	Search(ctx context.Context, query string) ([]dto.BookSearchResult, error)
}

type bookService struct {
	booksClient books.MetadataClient
	cache       *memory.MetadataCache
	sysLogger   logger.ILogger
}

func NewBookService(booksClient books.MetadataClient, cache *memory.MetadataCache, sysLogger logger.ILogger) IBookService {
	return &bookService{
		booksClient: booksClient,
		cache:       cache,
		sysLogger:   sysLogger,
	}
}

func (bs *bookService) GetMetadata(ctx context.Context, bookId string) (*dto.BookMetadata, error) {
	if meta, found := bs.cache.Get(bookId); found {
		return meta, nil
	}

	meta, err := bs.booksClient.GetMetadata(ctx, bookId)
	if err != nil {
		bs.sysLogger.Warn("book", "metadata lookup failed", map[string]interface{}{
			"book_id": bookId,
			"error":   err.Error(),
		})
		return nil, err
	}

	bs.cache.Save(bookId, meta)
	return meta, nil
}

func (bs *bookService) Search(ctx context.Context, query string) ([]dto.BookSearchResult, error) {
	return bs.booksClient.Search(ctx, query)
}
