package service

import (
	"context"
	"encoding/json"

	"bookchat-be/internal/dto"
	"bookchat-be/internal/pkg/logger"
	"bookchat-be/pkg/wiki"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the preparation topic: for each queued book it
// fetches the source text and builds the corpus ahead of the first chat call.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	corpusService ICorpusService
	wikiFetcher   wiki.Fetcher
	sysLogger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	corpusService ICorpusService,
	wikiFetcher wiki.Fetcher,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		corpusService: corpusService,
		wikiFetcher:   wikiFetcher,
		sysLogger:     sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishPrepareBookMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.sysLogger.Error("consumer", "failed to unmarshal prepare message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.sysLogger.Info("consumer", "preparing book corpus", map[string]interface{}{
		"book_id": payload.BookId,
		"title":   payload.Title,
	})

	// Already prepared? A previous message or on-demand chat beat us to it.
	if ready, err := cs.corpusService.Exists(ctx, payload.BookId); err == nil && ready {
		msg.Ack()
		return
	}

	page, err := cs.wikiFetcher.Fetch(ctx, payload.Title, payload.Author)
	if err != nil {
		cs.sysLogger.Error("consumer", "failed to fetch source text", map[string]interface{}{
			"book_id": payload.BookId,
			"title":   payload.Title,
			"error":   err.Error(),
		})
		// No article will ever appear for this query; redelivery cannot help.
		msg.Ack()
		return
	}

	chunks, err := cs.corpusService.Prepare(ctx, payload.BookId, page.Content)
	if err != nil {
		cs.sysLogger.Error("consumer", "failed to prepare corpus", map[string]interface{}{
			"book_id": payload.BookId,
			"error":   err.Error(),
		})
		msg.Nack() // Embedding or index write failures are retriable
		return
	}

	cs.sysLogger.Info("consumer", "book corpus ready", map[string]interface{}{
		"book_id":       payload.BookId,
		"source_title":  page.Title,
		"chunks_stored": chunks,
	})
	msg.Ack()
}
