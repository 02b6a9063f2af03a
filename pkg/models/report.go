package models

// CategoryStats is the full per-category rollup, recomputed each run.
// Percentages are 0 when TotalMentions is 0. Articles holds at most the
// first ten classified articles in processing order; the asset ranking
// scan operates over this bounded sample only.
type CategoryStats struct {
	PositiveCount int                 `json:"positive_count"`
	PositivePct   float64             `json:"positive_pct"`
	NegativeCount int                 `json:"negative_count"`
	NegativePct   float64             `json:"negative_pct"`
	NeutralCount  int                 `json:"neutral_count"`
	NeutralPct    float64             `json:"neutral_pct"`
	TotalMentions int                 `json:"total_mentions"`
	AvgConfidence float64             `json:"avg_confidence"`
	Articles      []ClassifiedArticle `json:"articles"`
	Skipped       int                 `json:"skipped_count"`
}

// CategorySummary is the condensed per-category view under
// "market_sentiment" in the report.
type CategorySummary struct {
	Positive      float64 `json:"positive"`
	Negative      float64 `json:"negative"`
	Neutral       float64 `json:"neutral"`
	TotalMentions int     `json:"total_mentions"`
	AvgConfidence float64 `json:"avg_confidence"`
	ArticlesCount int     `json:"articles_count"`
}

// AssetStat accumulates mention and sentiment counts for one tracked
// keyword across all categories' sampled articles.
type AssetStat struct {
	Asset        string  `json:"asset"`
	Mentions     int     `json:"mentions"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	SentimentAvg float64 `json:"sentiment_avg"`
}

// TopAssets holds the four asset leaderboards, each at most ten entries,
// restricted to keywords with at least one mention.
type TopAssets struct {
	MostTalked   []AssetStat `json:"most_talked"`
	LeastTalked  []AssetStat `json:"least_talked"`
	MostPositive []AssetStat `json:"most_positive"`
	MostNegative []AssetStat `json:"most_negative"`
}

// Report is the complete document one pipeline run produces. Each run's
// report fully replaces the previous one; no history is retained.
type Report struct {
	Timestamp            string                     `json:"timestamp"` // RFC 3339, generation start
	MarketSentiment      map[string]CategorySummary `json:"market_sentiment"`
	TopAssets            TopAssets                  `json:"top_assets"`
	DetailedCategoryData map[string]CategoryStats   `json:"detailed_category_data"`
}
