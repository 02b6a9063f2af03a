package pipeline

import "github.com/rcamargo/marketpulse/pkg/models"

// Deduplicate collapses articles sharing the same non-empty URL.
// Different keyword queries for one category frequently return the same
// story; counting it twice would skew the category percentages.
//
// Later duplicates overwrite earlier ones (last-seen-wins) while the
// article keeps its first-seen position in the output. Articles with an
// empty URL carry no identity and are all retained.
func Deduplicate(articles []models.RawArticle) []models.RawArticle {
	out := make([]models.RawArticle, 0, len(articles))
	index := make(map[string]int, len(articles))

	for _, a := range articles {
		if a.URL == "" {
			out = append(out, a)
			continue
		}
		if i, seen := index[a.URL]; seen {
			out[i] = a
			continue
		}
		index[a.URL] = len(out)
		out = append(out, a)
	}
	return out
}
