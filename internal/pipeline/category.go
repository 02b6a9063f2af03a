package pipeline

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/rcamargo/marketpulse/internal/classifier"
	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/internal/datasource"
	"github.com/rcamargo/marketpulse/pkg/models"
)

// CategoryAggregator drives fetch → dedupe → classify → statistics for
// one category.
type CategoryAggregator struct {
	source     datasource.Source
	classifier classifier.Classifier

	window       time.Duration
	fetchTimeout time.Duration
	maxTextLen   int
	sampleSize   int
}

// NewCategoryAggregator wires an aggregator from its collaborators.
func NewCategoryAggregator(src datasource.Source, cls classifier.Classifier, cfg config.Config) *CategoryAggregator {
	return &CategoryAggregator{
		source:       src,
		classifier:   cls,
		window:       time.Duration(cfg.News.WindowDays) * 24 * time.Hour,
		fetchTimeout: time.Duration(cfg.News.FetchTimeoutSec) * time.Second,
		maxTextLen:   cfg.Classifier.MaxTextLen,
		sampleSize:   cfg.Pipeline.SampleSize,
	}
}

// outcome is the per-article processing result. Skipped articles are
// counted but contribute to neither mentions nor sentiment.
type outcome struct {
	article models.ClassifiedArticle
	skipped bool
	reason  string
}

// Run aggregates one category. A failing keyword fetch contributes zero
// articles; an unclassifiable article is skipped. An empty result set is
// a valid all-zeros outcome, not an error.
func (ca *CategoryAggregator) Run(ctx context.Context, cat config.Category) (models.CategoryStats, error) {
	var raw []models.RawArticle
	for _, keyword := range cat.Keywords {
		fetched, err := ca.fetchKeyword(ctx, keyword)
		if err != nil {
			log.Printf("[pipeline] category %s: fetch %q failed: %v", cat.Name, keyword, err)
			continue
		}
		raw = append(raw, fetched...)
	}

	unique := Deduplicate(raw)

	outcomes := make([]outcome, 0, len(unique))
	available := ca.classifier.Available()
	for _, a := range unique {
		if !available {
			outcomes = append(outcomes, outcome{skipped: true, reason: "classifier unavailable"})
			continue
		}
		outcomes = append(outcomes, ca.classify(ctx, a))
	}

	return buildStats(outcomes, ca.sampleSize), nil
}

// fetchKeyword calls the news source under its own deadline so one slow
// keyword cannot stall the whole category.
func (ca *CategoryAggregator) fetchKeyword(ctx context.Context, keyword string) ([]models.RawArticle, error) {
	fctx, cancel := context.WithTimeout(ctx, ca.fetchTimeout)
	defer cancel()
	return ca.source.FetchArticles(fctx, keyword, ca.window)
}

// classify scores one article. Classification text is title plus
// description, truncated to the configured maximum.
func (ca *CategoryAggregator) classify(ctx context.Context, a models.RawArticle) outcome {
	text := a.Title
	if a.Description != "" {
		text += " " + a.Description
	}
	text = truncate(text, ca.maxTextLen)

	res, err := ca.classifier.Classify(ctx, text)
	if err != nil {
		return outcome{skipped: true, reason: err.Error()}
	}

	polarity, confidence := classifier.MapLabel(res)
	return outcome{article: models.ClassifiedArticle{
		Title:      a.Title,
		URL:        a.URL,
		Source:     a.SourceName,
		Sentiment:  polarity,
		Confidence: confidence,
		Timestamp:  time.Now().Format(time.RFC3339),
	}}
}

// buildStats rolls the per-article outcomes into category statistics,
// keeping the first sampleSize classified articles as the sample.
func buildStats(outcomes []outcome, sampleSize int) models.CategoryStats {
	var stats models.CategoryStats
	var confSum float64

	for _, o := range outcomes {
		if o.skipped {
			stats.Skipped++
			continue
		}
		switch {
		case o.article.Sentiment > 0:
			stats.PositiveCount++
		case o.article.Sentiment < 0:
			stats.NegativeCount++
		default:
			stats.NeutralCount++
		}
		confSum += o.article.Confidence
		if len(stats.Articles) < sampleSize {
			stats.Articles = append(stats.Articles, o.article)
		}
	}

	total := stats.PositiveCount + stats.NegativeCount + stats.NeutralCount
	stats.TotalMentions = total
	if total > 0 {
		stats.PositivePct = round2(float64(stats.PositiveCount) / float64(total) * 100)
		stats.NegativePct = round2(float64(stats.NegativeCount) / float64(total) * 100)
		stats.NeutralPct = round2(float64(stats.NeutralCount) / float64(total) * 100)
		stats.AvgConfidence = round3(confSum / float64(total))
	}
	return stats
}

// truncate bounds text to max runes; longer text is cut, not rejected.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
