package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/pkg/models"
)

// Builder orchestrates one full report generation: every category
// aggregated, then assets ranked across the combined results.
type Builder struct {
	categories []config.Category
	aggregator *CategoryAggregator
	maxWorkers int
}

// NewBuilder creates a report builder over the configured categories.
func NewBuilder(agg *CategoryAggregator, cfg config.Config) *Builder {
	workers := cfg.Pipeline.ConcurrentCategories
	if workers <= 0 {
		workers = 1
	}
	return &Builder{
		categories: cfg.Categories,
		aggregator: agg,
		maxWorkers: workers,
	}
}

// Generate runs the pipeline once and assembles the report. Categories
// share no mutable state and run concurrently; ranking waits for all of
// them since it scans across categories.
func (b *Builder) Generate(ctx context.Context) (*models.Report, error) {
	start := time.Now()

	var mu sync.Mutex
	results := make(map[string]models.CategoryStats, len(b.categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxWorkers)
	for _, cat := range b.categories {
		cat := cat
		g.Go(func() error {
			stats, err := b.aggregator.Run(gctx, cat)
			if err != nil {
				return err
			}
			mu.Lock()
			results[cat.Name] = stats
			mu.Unlock()
			log.Printf("[pipeline] category %s: %d mentions, %d skipped",
				cat.Name, stats.TotalMentions, stats.Skipped)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := make(map[string]models.CategorySummary, len(results))
	for name, stats := range results {
		summary[name] = models.CategorySummary{
			Positive:      stats.PositivePct,
			Negative:      stats.NegativePct,
			Neutral:       stats.NeutralPct,
			TotalMentions: stats.TotalMentions,
			AvgConfidence: stats.AvgConfidence,
			ArticlesCount: stats.PositiveCount + stats.NegativeCount + stats.NeutralCount,
		}
	}

	return &models.Report{
		Timestamp:            start.Format(time.RFC3339),
		MarketSentiment:      summary,
		TopAssets:            RankAssets(b.categories, results),
		DetailedCategoryData: results,
	}, nil
}
