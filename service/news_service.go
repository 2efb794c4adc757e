package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

const newsClientTimeout = 10 * time.Second

// NewsArticle is one legal news headline
type NewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// NewsService fetches legal news headlines from an external provider.
// The feed is decorative: any failure yields an empty list, never an error.
type NewsService struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewNewsService creates a news service for the given provider endpoint
func NewNewsService(baseURL, apiKey string) *NewsService {
	return &NewsService{
		client:  &http.Client{Timeout: newsClientTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchLegalNews returns recent Pakistan legal news headlines. On any
// failure it logs and returns an empty list.
func (s *NewsService) FetchLegalNews(ctx context.Context, limit int) []NewsArticle {
	if s.apiKey == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", "pakistan law legal court")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", limit))
	params.Set("apiKey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("Warning: failed to build news request: %v", err)
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Warning: news fetch failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Warning: news provider returned status %d", resp.StatusCode)
		return nil
	}

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("Warning: failed to decode news response: %v", err)
		return nil
	}

	articles := make([]NewsArticle, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		articles = append(articles, NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles
}
