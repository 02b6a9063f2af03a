// Package models defines the shared data shapes for the MarketPulse
// aggregation pipeline: raw and classified articles, per-category
// statistics, asset leaderboards, and the persisted report document.
package models

// Polarity is a signed sentiment classification.
type Polarity int

const (
	Negative Polarity = -1
	Neutral  Polarity = 0
	Positive Polarity = 1
)

// RawArticle is a news item as returned by a news source, before
// deduplication and classification. URL is the deduplication key and may
// be empty; articles without a URL are never deduplicated.
type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	SourceName  string `json:"source"`
}

// ClassifiedArticle is a deduplicated article with its sentiment result.
// Immutable once created. The JSON field names match the document the
// dashboard consumes.
type ClassifiedArticle struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Source     string   `json:"source"`
	Sentiment  Polarity `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Timestamp  string   `json:"timestamp"` // RFC 3339
}
