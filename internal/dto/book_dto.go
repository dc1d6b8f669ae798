package dto

type BookSearchResult struct {
	BookId      string   `json:"book_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
}

type BookSearchResponse struct {
	Status  string             `json:"status"`
	Results []BookSearchResult `json:"results"`
}
