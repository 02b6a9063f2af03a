package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/pkg/models"
)

// NewsAPI fetches articles from the NewsAPI /v2/everything endpoint.
type NewsAPI struct {
	apiKey   string
	baseURL  string
	pageSize int
	cache    *Cache
	limiter  *RateLimiter
}

// NewNewsAPI creates a NewsAPI source from configuration.
func NewNewsAPI(cfg config.NewsConfig) *NewsAPI {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2/everything"
	}
	return &NewsAPI{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		pageSize: pageSize,
		cache:    NewCache(10 * time.Minute),
		limiter:  NewRateLimiter(2, time.Second), // conservative: 2 req/s
	}
}

// Name returns the data source name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

// newsAPIResponse mirrors the relevant part of the NewsAPI JSON envelope.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"articles"`
}

// FetchArticles queries NewsAPI for the keyword over the trailing window,
// sorted by relevancy, English only.
func (n *NewsAPI) FetchArticles(ctx context.Context, keyword string, window time.Duration) ([]models.RawArticle, error) {
	cacheKey := fmt.Sprintf("newsapi:%s:%d", keyword, int(window.Hours()))
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.RawArticle), nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("from", now.Add(-window).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(n.pageSize))
	params.Set("language", "en")
	params.Set("apiKey", n.apiKey)

	body, _, err := doGet(ctx, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch %q: %w", keyword, err)
	}
	defer body.Close()

	var resp newsAPIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("newsapi decode %q: %w", keyword, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q for %q: %s", resp.Status, keyword, resp.Message)
	}

	articles := make([]models.RawArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		articles = append(articles, models.RawArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			SourceName:  source,
		})
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}
