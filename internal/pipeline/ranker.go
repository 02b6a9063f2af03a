package pipeline

import (
	"sort"
	"strings"

	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/pkg/models"
)

const rankingSize = 10

// RankAssets scans every sampled article across all categories against
// every configured keyword and builds the four leaderboards. A title
// mentioning two keywords counts one mention for each; attribution is
// many-to-many on purpose.
//
// Ranking reads only the per-category article samples, not the full
// classified set: the sample is the only article data the report keeps,
// so it is the only data the leaderboards can be reproduced from.
func RankAssets(categories []config.Category, results map[string]models.CategoryStats) models.TopAssets {
	type acc struct {
		mentions     int
		positive     int
		negative     int
		sentimentSum int
	}

	// Keyword order follows the category configuration so ties sort
	// reproducibly.
	var order []string
	stats := make(map[string]*acc)
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if _, ok := stats[kw]; ok {
				continue
			}
			stats[kw] = &acc{}
			order = append(order, kw)
		}
	}

	var articles []models.ClassifiedArticle
	for _, cat := range categories {
		articles = append(articles, results[cat.Name].Articles...)
	}

	for _, kw := range order {
		needle := strings.ToLower(kw)
		a := stats[kw]
		for _, art := range articles {
			if !strings.Contains(strings.ToLower(art.Title), needle) {
				continue
			}
			a.mentions++
			switch {
			case art.Sentiment > 0:
				a.positive++
			case art.Sentiment < 0:
				a.negative++
			}
			a.sentimentSum += int(art.Sentiment)
		}
	}

	var list []models.AssetStat
	for _, kw := range order {
		a := stats[kw]
		if a.mentions == 0 {
			continue
		}
		list = append(list, models.AssetStat{
			Asset:        kw,
			Mentions:     a.mentions,
			Positive:     a.positive,
			Negative:     a.negative,
			SentimentAvg: round3(float64(a.sentimentSum) / float64(a.mentions)),
		})
	}

	return models.TopAssets{
		MostTalked:   rankBy(list, func(a, b models.AssetStat) bool { return a.Mentions > b.Mentions }),
		LeastTalked:  rankBy(list, func(a, b models.AssetStat) bool { return a.Mentions < b.Mentions }),
		MostPositive: rankBy(list, func(a, b models.AssetStat) bool { return a.SentimentAvg > b.SentimentAvg }),
		MostNegative: rankBy(list, func(a, b models.AssetStat) bool { return a.SentimentAvg < b.SentimentAvg }),
	}
}

// rankBy returns a sorted copy truncated to the leaderboard size.
// Stable sort keeps configuration order for ties.
func rankBy(list []models.AssetStat, less func(a, b models.AssetStat) bool) []models.AssetStat {
	out := make([]models.AssetStat, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > rankingSize {
		out = out[:rankingSize]
	}
	return out
}
