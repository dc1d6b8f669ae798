package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookchat-be/internal/dto"
	"bookchat-be/internal/repository/contract"
	"bookchat-be/internal/repository/memory"
	"bookchat-be/pkg/llm"
	"bookchat-be/pkg/rag/history"
	"bookchat-be/pkg/wiki"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCorpus scripts per-call Retrieve outcomes so tests can drive the
// prepare-and-retry flow precisely.
type fakeCorpus struct {
	exists       bool
	existsErr    error
	retrieveErrs []error
	contexts     []string
	prepareErr   error

	prepareCalls  int
	retrieveCalls int
}

func (f *fakeCorpus) Prepare(_ context.Context, _ string, _ string) (int, error) {
	f.prepareCalls++
	if f.prepareErr != nil {
		return 0, f.prepareErr
	}
	f.exists = true
	return len(f.contexts), nil
}

func (f *fakeCorpus) Exists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeCorpus) Retrieve(_ context.Context, _ string, _ string, _ int) ([]string, error) {
	call := f.retrieveCalls
	f.retrieveCalls++
	if call < len(f.retrieveErrs) && f.retrieveErrs[call] != nil {
		return nil, f.retrieveErrs[call]
	}
	return f.contexts, nil
}

type fakeBooks struct {
	meta  *dto.BookMetadata
	err   error
	calls int
}

func (f *fakeBooks) GetMetadata(_ context.Context, _ string) (*dto.BookMetadata, error) {
	f.calls++
	return f.meta, f.err
}

func (f *fakeBooks) Search(_ context.Context, _ string) ([]dto.BookSearchResult, error) {
	return nil, nil
}

type fakeWiki struct {
	page  *wiki.Page
	err   error
	calls int
}

func (f *fakeWiki) Fetch(_ context.Context, _ string, _ string) (*wiki.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

// fakeChatLLM answers generation prompts with answer and compression
// prompts with summary.
type fakeChatLLM struct {
	answer  string
	summary string
	err     error
}

func (f *fakeChatLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return f.answer, f.err
}

func (f *fakeChatLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if strings.HasPrefix(prompt, "Summarize") {
		return f.summary, nil
	}
	return f.answer, nil
}

func validMeta() *dto.BookMetadata {
	return &dto.BookMetadata{
		Title:         "Moby-Dick",
		Authors:       []string{"Herman Melville"},
		Description:   "A whaling voyage.",
		Categories:    []string{"Fiction"},
		PublishedDate: "1851",
	}
}

type chatFixture struct {
	corpus *fakeCorpus
	books  *fakeBooks
	wiki   *fakeWiki
	llm    *fakeChatLLM
	svc    IChatService
}

func newChatFixture(corpus *fakeCorpus) *chatFixture {
	f := &chatFixture{
		corpus: corpus,
		books:  &fakeBooks{meta: validMeta()},
		wiki:   &fakeWiki{page: &wiki.Page{Title: "Moby-Dick", Content: "Call me Ishmael."}},
		llm:    &fakeChatLLM{answer: "It is about a whale.", summary: "About a whale."},
	}
	f.svc = NewChatService(
		corpus,
		NewBookService(f.books, memory.NewMetadataCache(), noopLogger{}),
		f.wiki,
		f.llm,
		history.NewCompressor(f.llm),
		noopLogger{},
		3,
	)
	return f
}

func TestChatAnswerReadyBook(t *testing.T) {
	f := newChatFixture(&fakeCorpus{exists: true, contexts: []string{"chunk one", "chunk two"}})

	res, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "What is it about?",
		History:  []string{"User: hi", "Bot: hello"},
		Metadata: validMeta(),
	})
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	require.NotNil(t, res.Response)
	assert.Equal(t, "It is about a whale.", *res.Response)
	assert.Equal(t, []string{
		"User: hi",
		"Bot: hello",
		"User: What is it about?",
		"Bot: About a whale.",
	}, res.History)
	assert.Equal(t, "Moby-Dick", res.Metadata.Title)

	assert.Zero(t, f.corpus.prepareCalls, "a ready book must not be re-prepared")
	assert.Zero(t, f.wiki.calls)
	assert.Zero(t, f.books.calls, "complete caller metadata skips the catalog")
}

func TestChatAnswerFetchesMissingMetadata(t *testing.T) {
	f := newChatFixture(&fakeCorpus{exists: true, contexts: []string{"chunk"}})

	res, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "Who wrote it?",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.books.calls)
	assert.Equal(t, "Moby-Dick", res.Metadata.Title)
}

func TestChatAnswerMetadataUnavailable(t *testing.T) {
	f := newChatFixture(&fakeCorpus{exists: true, contexts: []string{"chunk"}})
	f.books.meta = nil
	f.books.err = errors.New("quota exceeded")

	_, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "Who wrote it?",
	})
	assert.ErrorIs(t, err, ErrMetadataUnavailable)
	assert.Zero(t, f.corpus.retrieveCalls, "metadata failure is fatal before retrieval")
}

func TestChatAnswerColdBookPreparesFirst(t *testing.T) {
	f := newChatFixture(&fakeCorpus{exists: false, contexts: []string{"chunk"}})

	res, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "What is it about?",
		Metadata: validMeta(),
	})
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 1, f.corpus.prepareCalls)
	assert.Equal(t, 1, f.wiki.calls)
	assert.Equal(t, 1, f.corpus.retrieveCalls, "cold path gets a single attempt after preparing")
}

func TestChatAnswerSelfHealsOnce(t *testing.T) {
	f := newChatFixture(&fakeCorpus{
		exists:       true,
		contexts:     []string{"chunk"},
		retrieveErrs: []error{contract.ErrCollectionNotFound},
	})

	res, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "What is it about?",
		Metadata: validMeta(),
	})
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 1, f.corpus.prepareCalls)
	assert.Equal(t, 2, f.corpus.retrieveCalls)
}

func TestChatAnswerRetryExhausted(t *testing.T) {
	cause := errors.New("index corrupt")
	f := newChatFixture(&fakeCorpus{
		exists:       true,
		contexts:     []string{"chunk"},
		retrieveErrs: []error{cause, cause},
	})

	callerHistory := []string{"User: hi", "Bot: hello"}
	_, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "What is it about?",
		History:  callerHistory,
		Metadata: validMeta(),
	})
	assert.ErrorIs(t, err, ErrChatUnavailable)

	assert.Equal(t, 1, f.corpus.prepareCalls, "exactly one rebuild, never a second")
	assert.Equal(t, 2, f.corpus.retrieveCalls)
	assert.Equal(t, []string{"User: hi", "Bot: hello"}, callerHistory, "history untouched on failure")
}

func TestChatAnswerColdBookPrepareFailure(t *testing.T) {
	f := newChatFixture(&fakeCorpus{exists: false})
	f.wiki.err = wiki.ErrPageNotFound

	_, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "What is it about?",
		Metadata: validMeta(),
	})
	assert.ErrorIs(t, err, ErrChatUnavailable)
	assert.Zero(t, f.corpus.retrieveCalls)
}

func TestChatAnswerGenerationFailureHealsAndRecovers(t *testing.T) {
	f := newChatFixture(&fakeCorpus{exists: true, contexts: []string{"chunk"}})
	// First generation fails, rebuild happens, second one succeeds.
	attempts := 0
	f.svc = NewChatService(
		f.corpus,
		NewBookService(f.books, memory.NewMetadataCache(), noopLogger{}),
		f.wiki,
		generateFunc(func(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
			if strings.HasPrefix(prompt, "Summarize") {
				return "About a whale.", nil
			}
			attempts++
			if attempts == 1 {
				return "", errors.New("model overloaded")
			}
			return "It is about a whale.", nil
		}),
		history.NewCompressor(nil),
		noopLogger{},
		3,
	)

	res, err := f.svc.Answer(context.Background(), &dto.ChatQueryRequest{
		BookId:   "book-1",
		Question: "What is it about?",
		Metadata: validMeta(),
	})
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, f.corpus.prepareCalls)
}

// generateFunc adapts a function to llm.LLMProvider for scripted behavior.
type generateFunc func(ctx context.Context, prompt string, options ...llm.Option) (string, error)

func (g generateFunc) Chat(ctx context.Context, msgs []llm.Message, options ...llm.Option) (string, error) {
	last := ""
	if len(msgs) > 0 {
		last = msgs[len(msgs)-1].Content
	}
	return g(ctx, last, options...)
}

func (g generateFunc) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return g(ctx, prompt, options...)
}

func TestChatCheckDelegates(t *testing.T) {
	f := newChatFixture(&fakeCorpus{exists: true})

	ready, err := f.svc.Check(context.Background(), "book-1")
	require.NoError(t, err)
	assert.True(t, ready)
}
