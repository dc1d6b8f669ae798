package books

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bookchat-be/internal/dto"
)

// MetadataClient looks up book metadata by volume id.
type MetadataClient interface {
	GetMetadata(ctx context.Context, bookId string) (*dto.BookMetadata, error)
	Search(ctx context.Context, query string) ([]dto.BookSearchResult, error)
}

// Client talks to the Google Books volumes API.
type Client struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

var _ MetadataClient = &Client{}

func NewClient(apiKey string) *Client {
	return &Client{
		ApiKey:  apiKey,
		BaseURL: "https://www.googleapis.com/books/v1",
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type volumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	PublishedDate string   `json:"publishedDate"`
	Publisher     string   `json:"publisher"`
	PageCount     int      `json:"pageCount"`
	Language      string   `json:"language"`
	ImageLinks    struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

type volumeResponse struct {
	Id         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
	Error      *apiError  `json:"error,omitempty"`
}

type searchResponse struct {
	Items []volumeResponse `json:"items"`
	Error *apiError        `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) GetMetadata(ctx context.Context, bookId string) (*dto.BookMetadata, error) {
	endpoint := fmt.Sprintf("%s/volumes/%s?key=%s", c.BaseURL, url.PathEscape(bookId), url.QueryEscape(c.ApiKey))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var res volumeResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("books: decoding volume response: %w", err)
	}
	if res.Error != nil {
		return nil, fmt.Errorf("books: api error %d: %s", res.Error.Code, res.Error.Message)
	}

	v := res.VolumeInfo
	return &dto.BookMetadata{
		BookId:        bookId,
		Title:         v.Title,
		Authors:       v.Authors,
		Description:   v.Description,
		Categories:    v.Categories,
		PublishedDate: v.PublishedDate,
		Publisher:     v.Publisher,
		Thumbnail:     v.ImageLinks.Thumbnail,
		PageCount:     v.PageCount,
		Language:      v.Language,
	}, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]dto.BookSearchResult, error) {
	endpoint := fmt.Sprintf("%s/volumes?q=%s&key=%s", c.BaseURL, url.QueryEscape(query), url.QueryEscape(c.ApiKey))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("books: decoding search response: %w", err)
	}
	if res.Error != nil {
		return nil, fmt.Errorf("books: api error %d: %s", res.Error.Code, res.Error.Message)
	}

	results := make([]dto.BookSearchResult, 0, len(res.Items))
	for _, item := range res.Items {
		results = append(results, dto.BookSearchResult{
			BookId:      item.Id,
			Title:       item.VolumeInfo.Title,
			Authors:     item.VolumeInfo.Authors,
			Description: item.VolumeInfo.Description,
			Thumbnail:   item.VolumeInfo.ImageLinks.Thumbnail,
		})
	}
	return results, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("books: request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("books: reading response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		// The API reports structured errors with non-200 codes too; surface
		// the body so the caller sees the reason.
		return nil, fmt.Errorf("books: status %d, body %s", res.StatusCode, string(body))
	}
	return body, nil
}
