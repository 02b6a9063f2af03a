package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/pkg/models"
)

// RSS aggregates articles from a configured set of RSS/Atom feeds and
// filters them by keyword. It is the offline-friendly alternative to
// the NewsAPI source.
type RSS struct {
	feeds  []string
	parser *gofeed.Parser
	cache  *Cache
}

// NewRSS creates an RSS source from configuration.
func NewRSS(cfg config.NewsConfig) *RSS {
	parser := gofeed.NewParser()
	parser.UserAgent = DefaultUserAgent
	return &RSS{
		feeds:  cfg.RSSFeeds,
		parser: parser,
		cache:  NewCache(10 * time.Minute),
	}
}

// Name returns the data source name.
func (r *RSS) Name() string { return "RSS" }

// FetchArticles pulls every configured feed and returns the items whose
// title or description mentions the keyword and which were published
// inside the trailing window. Feeds that fail to parse are skipped so
// one dead feed does not sink the whole fetch.
func (r *RSS) FetchArticles(ctx context.Context, keyword string, window time.Duration) ([]models.RawArticle, error) {
	if len(r.feeds) == 0 {
		return nil, fmt.Errorf("rss: %w: no feeds configured", ErrSourceUnavailable)
	}

	items, err := r.allItems(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-window)
	needle := strings.ToLower(keyword)

	var articles []models.RawArticle
	for _, it := range items {
		if it.PublishedParsed != nil && it.PublishedParsed.Before(cutoff) {
			continue
		}
		desc := cleanHTML(it.Description)
		haystack := strings.ToLower(it.Title + " " + desc)
		if !strings.Contains(haystack, needle) {
			continue
		}
		source := "RSS"
		if it.feedTitle != "" {
			source = it.feedTitle
		}
		articles = append(articles, models.RawArticle{
			Title:       it.Title,
			Description: desc,
			URL:         it.Link,
			SourceName:  source,
		})
	}
	return articles, nil
}

type feedItem struct {
	*gofeed.Item
	feedTitle string
}

// allItems fetches and flattens every configured feed, caching the
// result so per-keyword calls within one run hit the network once.
func (r *RSS) allItems(ctx context.Context) ([]feedItem, error) {
	if cached, ok := r.cache.Get("rss:items"); ok {
		return cached.([]feedItem), nil
	}

	var items []feedItem
	var lastErr error
	for _, feedURL := range r.feeds {
		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("rss parse %s: %w", feedURL, err)
			continue
		}
		for _, it := range feed.Items {
			items = append(items, feedItem{Item: it, feedTitle: feed.Title})
		}
	}
	if len(items) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, nil
	}

	r.cache.Set("rss:items", items)
	return items, nil
}

// cleanHTML strips markup from feed descriptions, which are frequently
// HTML fragments rather than plain text.
func cleanHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
