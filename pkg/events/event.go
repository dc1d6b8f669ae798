package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "BOOK_CORPUS_PREPARED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// CorpusPrepared is published after a book's corpus is materialized in the
// vector index so external systems can react (cache warm, analytics).
func CorpusPrepared(bookId string, chunksStored int) Event {
	return BaseEvent{
		Type: "BOOK_CORPUS_PREPARED",
		Data: map[string]interface{}{
			"book_id":       bookId,
			"chunks_stored": chunksStored,
		},
		OccurredAt: time.Now(),
	}
}
