package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrPageNotFound signals that no Wikipedia article matched the book.
var ErrPageNotFound = errors.New("wiki: page not found")

// DisambiguationError is returned when the query lands on a disambiguation
// page; Options lists candidate article titles.
type DisambiguationError struct {
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("wiki: ambiguous query, %d candidate pages", len(e.Options))
}

// Page is the acquired source text for a book.
type Page struct {
	Title   string
	URL     string
	Content string
}

// Fetcher acquires the full article text for a book title.
type Fetcher interface {
	Fetch(ctx context.Context, title string, author string) (*Page, error)
}

// Client talks to the MediaWiki action API.
type Client struct {
	BaseURL string
	Client  *http.Client
}

var _ Fetcher = &Client{}

func NewClient() *Client {
	return &Client{
		BaseURL: "https://en.wikipedia.org/w/api.php",
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type pageResponse struct {
	Query struct {
		Pages map[string]struct {
			PageId    int    `json:"pageid"`
			Title     string `json:"title"`
			Extract   string `json:"extract"`
			FullURL   string `json:"fullurl"`
			Missing   *struct{} `json:"missing,omitempty"`
			PageProps map[string]string `json:"pageprops,omitempty"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch searches for the best-matching article and downloads its plain-text
// content. Disambiguation pages and empty search results are reported as
// typed failures so the caller can treat them as preparation errors.
func (c *Client) Fetch(ctx context.Context, title string, author string) (*Page, error) {
	query := title
	if author != "" {
		query = title + " " + author
	}

	candidates, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrPageNotFound
	}

	page, err := c.fetchPage(ctx, candidates[0])
	if err != nil {
		var disambig *DisambiguationError
		if errors.As(err, &disambig) && len(disambig.Options) == 0 {
			disambig.Options = candidates
		}
		return nil, err
	}
	return page, nil
}

func (c *Client) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "5")
	params.Set("format", "json")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("wiki: decoding search response: %w", err)
	}

	titles := make([]string, 0, len(res.Query.Search))
	for _, hit := range res.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}

func (c *Client) fetchPage(ctx context.Context, title string) (*Page, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|info|pageprops")
	params.Set("titles", title)
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("inprop", "url")
	params.Set("format", "json")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var res pageResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("wiki: decoding page response: %w", err)
	}

	for _, p := range res.Query.Pages {
		if p.Missing != nil || p.PageId == 0 {
			return nil, ErrPageNotFound
		}
		if _, ok := p.PageProps["disambiguation"]; ok {
			return nil, &DisambiguationError{}
		}
		if strings.TrimSpace(p.Extract) == "" {
			return nil, ErrPageNotFound
		}
		return &Page{
			Title:   p.Title,
			URL:     p.FullURL,
			Content: p.Extract,
		}, nil
	}

	return nil, ErrPageNotFound
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "bookchat-be/1.0")

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wiki: request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("wiki: reading response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki: status %d, body %s", res.StatusCode, string(body))
	}
	return body, nil
}
