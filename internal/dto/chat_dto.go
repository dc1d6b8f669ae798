package dto

// BookMetadata enriches the prompt; it is supplied by the caller or fetched
// from Google Books, never persisted by this service.
type BookMetadata struct {
	BookId        string   `json:"book_id,omitempty"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"published_date"`
	Publisher     string   `json:"publisher,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// Complete reports whether the metadata is usable for prompt assembly
// without a collaborator lookup.
func (m *BookMetadata) Complete() bool {
	return m != nil && m.Title != ""
}

type ChatQueryRequest struct {
	BookId   string        `json:"book_id" validate:"required"`
	Question string        `json:"question" validate:"required"`
	History  []string      `json:"history"`
	Metadata *BookMetadata `json:"metadata,omitempty"`
}

type ChatQueryResponse struct {
	Status   string        `json:"status"`
	Response *string       `json:"response"`
	History  []string      `json:"history"`
	Metadata *BookMetadata `json:"metadata,omitempty"`
	Message  string        `json:"message,omitempty"`
}

type CheckBookResponse struct {
	Status  string `json:"status"`
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

type PrepareBookRequest struct {
	BookId string `json:"book_id" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Author string `json:"author,omitempty"`
}

type PrepareBookResponse struct {
	BookId string `json:"book_id"`
	Queued bool   `json:"queued"`
}

// PublishPrepareBookMessage is the payload carried on the preparation topic.
type PublishPrepareBookMessage struct {
	BookId string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
}
