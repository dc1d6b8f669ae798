package service

import (
	"context"
	"errors"
	"fmt"

	"bookchat-be/internal/constant"
	"bookchat-be/internal/dto"
	"bookchat-be/internal/pkg/logger"
	"bookchat-be/pkg/llm"
	"bookchat-be/pkg/rag/history"
	"bookchat-be/pkg/rag/prompt"
	"bookchat-be/pkg/wiki"
)

// ErrMetadataUnavailable means the caller supplied no usable metadata and the
// catalog lookup failed. Fatal to the chat call.
var ErrMetadataUnavailable = errors.New("book metadata unavailable")

// ErrChatUnavailable means retrieval or generation failed even after a fresh
// preparation attempt. It always wraps the underlying cause.
var ErrChatUnavailable = errors.New("chat unavailable for book")

// IChatService answers questions about a book, preparing its corpus on
// demand when needed.
type IChatService interface {
	// Answer runs the full query flow. On success the returned history is the
	// caller's history plus the new user/bot exchange; on any error the
	// caller's history is untouched.
	Answer(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error)

	// Check reports whether the book's corpus is prepared and non-empty.
	Check(ctx context.Context, bookId string) (bool, error)
}

type chatService struct {
	corpusService ICorpusService
	bookService   IBookService
	wikiFetcher   wiki.Fetcher
	llmProvider   llm.LLMProvider
	compressor    *history.Compressor
	sysLogger     logger.ILogger
	topK          int
}

func NewChatService(
	corpusService ICorpusService,
	bookService IBookService,
	wikiFetcher wiki.Fetcher,
	llmProvider llm.LLMProvider,
	compressor *history.Compressor,
	sysLogger logger.ILogger,
	topK int,
) IChatService {
	if topK <= 0 {
		topK = 3
	}
	return &chatService{
		corpusService: corpusService,
		bookService:   bookService,
		wikiFetcher:   wikiFetcher,
		llmProvider:   llmProvider,
		compressor:    compressor,
		sysLogger:     sysLogger,
		topK:          topK,
	}
}

func (cs *chatService) Answer(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	meta, err := cs.resolveMetadata(ctx, req)
	if err != nil {
		return nil, err
	}

	ready, err := cs.corpusService.Exists(ctx, req.BookId)
	if err != nil {
		cs.sysLogger.Warn("chat", "readiness check failed, treating corpus as unprepared", map[string]interface{}{
			"book_id": req.BookId,
			"error":   err.Error(),
		})
		ready = false
	}

	var answer string
	if !ready {
		// Cold book: prepare first, then a single attempt.
		if err := cs.prepare(ctx, req.BookId, meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
		}
		answer, err = cs.attempt(ctx, req, meta)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
		}
	} else {
		answer, err = cs.attempt(ctx, req, meta)
		if err != nil {
			// Self-heal: the index may be stale or corrupt. Rebuild once and
			// retry exactly once.
			cs.sysLogger.Warn("chat", "query attempt failed, rebuilding corpus", map[string]interface{}{
				"book_id": req.BookId,
				"error":   err.Error(),
			})
			if prepErr := cs.prepare(ctx, req.BookId, meta); prepErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, prepErr)
			}
			answer, err = cs.attempt(ctx, req, meta)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
			}
		}
	}

	compressed := cs.compressor.Compress(ctx, answer)

	updatedHistory := make([]string, 0, len(req.History)+2)
	updatedHistory = append(updatedHistory, req.History...)
	updatedHistory = append(updatedHistory,
		constant.HistoryUserPrefix+req.Question,
		constant.HistoryBotPrefix+compressed,
	)

	return &dto.ChatQueryResponse{
		Status:   "success",
		Response: &answer,
		History:  updatedHistory,
		Metadata: meta,
	}, nil
}

func (cs *chatService) Check(ctx context.Context, bookId string) (bool, error) {
	return cs.corpusService.Exists(ctx, bookId)
}

// resolveMetadata prefers caller-supplied metadata and falls back to the
// catalog. Incomplete metadata from both sources is fatal.
func (cs *chatService) resolveMetadata(ctx context.Context, req *dto.ChatQueryRequest) (*dto.BookMetadata, error) {
	if req.Metadata.Complete() {
		return req.Metadata, nil
	}

	meta, err := cs.bookService.GetMetadata(ctx, req.BookId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	if !meta.Complete() {
		return nil, fmt.Errorf("%w: catalog returned no title for %s", ErrMetadataUnavailable, req.BookId)
	}
	return meta, nil
}

// attempt is one retrieve-and-generate pass with no healing of its own.
func (cs *chatService) attempt(ctx context.Context, req *dto.ChatQueryRequest, meta *dto.BookMetadata) (string, error) {
	contexts, err := cs.corpusService.Retrieve(ctx, req.BookId, req.Question, cs.topK)
	if err != nil {
		return "", err
	}

	p := prompt.NewBookPromptBuilder(meta, req.History, contexts, req.Question).Build()

	answer, err := cs.llmProvider.Generate(ctx, p)
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (cs *chatService) prepare(ctx context.Context, bookId string, meta *dto.BookMetadata) error {
	author := ""
	if len(meta.Authors) > 0 {
		author = meta.Authors[0]
	}

	page, err := cs.wikiFetcher.Fetch(ctx, meta.Title, author)
	if err != nil {
		return fmt.Errorf("fetching source text: %w", err)
	}

	chunks, err := cs.corpusService.Prepare(ctx, bookId, page.Content)
	if err != nil {
		return err
	}

	cs.sysLogger.Info("chat", "corpus prepared on demand", map[string]interface{}{
		"book_id":       bookId,
		"source_title":  page.Title,
		"chunks_stored": chunks,
	})
	return nil
}
