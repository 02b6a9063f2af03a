package pipeline

import (
	"reflect"
	"testing"

	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/pkg/models"
)

func cryptoCategories() []config.Category {
	return []config.Category{
		{Name: "criptos", Keywords: []string{"Bitcoin", "Ethereum", "crypto"}},
		{Name: "gold", Keywords: []string{"gold", "GLD"}},
	}
}

func TestRankAssetsManyToManyAttribution(t *testing.T) {
	results := map[string]models.CategoryStats{
		"criptos": {Articles: []models.ClassifiedArticle{
			{Title: "Bitcoin and Ethereum surge", Sentiment: models.Positive, Confidence: 0.9},
		}},
	}

	top := RankAssets(cryptoCategories(), results)

	byAsset := map[string]models.AssetStat{}
	for _, a := range top.MostTalked {
		byAsset[a.Asset] = a
	}
	for _, asset := range []string{"Bitcoin", "Ethereum"} {
		stat, ok := byAsset[asset]
		if !ok {
			t.Fatalf("%s missing from most_talked", asset)
		}
		if stat.Mentions != 1 || stat.Positive != 1 {
			t.Errorf("%s = %+v, want 1 mention, 1 positive", asset, stat)
		}
	}
	if _, ok := byAsset["gold"]; ok {
		t.Error("gold has zero mentions and must be excluded")
	}
}

func TestRankAssetsCaseInsensitive(t *testing.T) {
	results := map[string]models.CategoryStats{
		"gold": {Articles: []models.ClassifiedArticle{
			{Title: "GOLD prices steady ahead of fed minutes", Sentiment: models.Neutral, Confidence: 0.5},
		}},
	}

	top := RankAssets(cryptoCategories(), results)
	if len(top.MostTalked) != 1 || top.MostTalked[0].Asset != "gold" {
		t.Fatalf("most_talked = %+v, want single gold entry", top.MostTalked)
	}
}

func TestRankAssetsSentimentAverages(t *testing.T) {
	results := map[string]models.CategoryStats{
		"criptos": {Articles: []models.ClassifiedArticle{
			{Title: "Bitcoin rallies hard", Sentiment: models.Positive},
			{Title: "Bitcoin stumbles on regulation", Sentiment: models.Negative},
			{Title: "Bitcoin unchanged in quiet session", Sentiment: models.Neutral},
			{Title: "Ethereum upgrade ships", Sentiment: models.Positive},
		}},
	}

	top := RankAssets(cryptoCategories(), results)

	var btc, eth models.AssetStat
	for _, a := range top.MostTalked {
		switch a.Asset {
		case "Bitcoin":
			btc = a
		case "Ethereum":
			eth = a
		}
	}
	if btc.Mentions != 3 || btc.Positive != 1 || btc.Negative != 1 {
		t.Errorf("Bitcoin = %+v, want 3 mentions, 1 positive, 1 negative", btc)
	}
	if btc.SentimentAvg != 0 {
		t.Errorf("Bitcoin sentiment_avg = %v, want 0 (+1-1+0 over 3)", btc.SentimentAvg)
	}
	if eth.SentimentAvg != 1 {
		t.Errorf("Ethereum sentiment_avg = %v, want 1", eth.SentimentAvg)
	}

	if top.MostPositive[0].Asset != "Ethereum" {
		t.Errorf("most_positive[0] = %s, want Ethereum", top.MostPositive[0].Asset)
	}
	if top.MostTalked[0].Asset != "Bitcoin" {
		t.Errorf("most_talked[0] = %s, want Bitcoin", top.MostTalked[0].Asset)
	}
}

func TestRankAssetsDeterministic(t *testing.T) {
	results := map[string]models.CategoryStats{
		"criptos": {Articles: []models.ClassifiedArticle{
			{Title: "Bitcoin and Ethereum and crypto in one headline", Sentiment: models.Positive},
		}},
		"gold": {Articles: []models.ClassifiedArticle{
			{Title: "gold and GLD both flat", Sentiment: models.Neutral},
		}},
	}

	first := RankAssets(cryptoCategories(), results)
	for i := 0; i < 20; i++ {
		again := RankAssets(cryptoCategories(), results)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\nvs\n%+v", i, first, again)
		}
	}

	// All five keywords tie at one mention; stable sort must keep
	// configuration order.
	wantOrder := []string{"Bitcoin", "Ethereum", "crypto", "gold", "GLD"}
	for i, want := range wantOrder {
		if first.MostTalked[i].Asset != want {
			t.Errorf("most_talked[%d] = %s, want %s", i, first.MostTalked[i].Asset, want)
		}
	}
}

func TestRankAssetsTruncatesToTen(t *testing.T) {
	var keywords []string
	var articles []models.ClassifiedArticle
	names := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliet", "kilo", "lima"}
	for _, n := range names {
		keywords = append(keywords, n)
		articles = append(articles, models.ClassifiedArticle{Title: n + " in the news", Sentiment: models.Neutral})
	}

	// Spread articles across two categories so each sample stays ≤10.
	cats := []config.Category{
		{Name: "first", Keywords: keywords[:6]},
		{Name: "second", Keywords: keywords[6:]},
	}
	results := map[string]models.CategoryStats{
		"first":  {Articles: articles[:6]},
		"second": {Articles: articles[6:]},
	}

	top := RankAssets(cats, results)
	for name, list := range map[string][]models.AssetStat{
		"most_talked":   top.MostTalked,
		"least_talked":  top.LeastTalked,
		"most_positive": top.MostPositive,
		"most_negative": top.MostNegative,
	} {
		if len(list) != 10 {
			t.Errorf("%s has %d entries, want 10", name, len(list))
		}
	}
}

func TestRankAssetsEmptyResults(t *testing.T) {
	top := RankAssets(cryptoCategories(), map[string]models.CategoryStats{})
	if len(top.MostTalked) != 0 {
		t.Errorf("most_talked = %+v, want empty", top.MostTalked)
	}
}
