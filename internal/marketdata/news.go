package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Story struct {
	Title       string
	Source      string
	URL         string
	Summary     string
	PublishedAt time.Time
}

type NewsProvider interface {
	GetCompanyNews(ctx context.Context, ticker, name string, since time.Time) ([]Story, error)
}

// NewsClient talks to a NewsAPI compatible /v2/everything endpoint.
type NewsClient struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	pageSize int
	log      zerolog.Logger
}

func NewNewsClient(baseURL, apiKey string, log zerolog.Logger) *NewsClient {
	return &NewsClient{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		pageSize: 30,
		log:      log.With().Str("client", "newsdata").Logger(),
	}
}

type everythingResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (c *NewsClient) GetCompanyNews(ctx context.Context, ticker, name string, since time.Time) ([]Story, error) {
	query := fmt.Sprintf("%q", ticker)
	if name != "" {
		query += " OR " + fmt.Sprintf("%q", name)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", since.Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprint(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed everythingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("news response for %s: %w", ticker, err)
	}
	// The vendor reports failures with status "error" regardless of HTTP code.
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("news request for %s rejected: %s", ticker, parsed.Message)
	}

	stories := make([]Story, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		story := Story{
			Title:   a.Title,
			Source:  a.Source.Name,
			URL:     a.URL,
			Summary: a.Description,
		}
		if at, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			story.PublishedAt = at
		} else {
			story.PublishedAt = time.Now().UTC()
		}
		stories = append(stories, story)
	}
	return stories, nil
}
