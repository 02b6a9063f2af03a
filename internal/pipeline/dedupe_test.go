package pipeline

import (
	"testing"

	"github.com/rcamargo/marketpulse/pkg/models"
)

func TestDeduplicateLastSeenWins(t *testing.T) {
	in := []models.RawArticle{
		{Title: "early version", URL: "https://example.com/a"},
		{Title: "other story", URL: "https://example.com/b"},
		{Title: "updated version", URL: "https://example.com/a"},
	}
	out := Deduplicate(in)
	if len(out) != 2 {
		t.Fatalf("got %d articles, want 2", len(out))
	}
	if out[0].Title != "updated version" {
		t.Errorf("duplicate url should keep the later content, got %q", out[0].Title)
	}
	if out[0].URL != "https://example.com/a" || out[1].URL != "https://example.com/b" {
		t.Errorf("first-seen position order not preserved: %v", out)
	}
}

func TestDeduplicateEmptyURLsAllRetained(t *testing.T) {
	in := []models.RawArticle{
		{Title: "no url one"},
		{Title: "no url two"},
		{Title: "no url three"},
	}
	out := Deduplicate(in)
	if len(out) != 3 {
		t.Errorf("got %d articles, want 3 (empty urls never deduplicate)", len(out))
	}
}

func TestDeduplicateMixed(t *testing.T) {
	in := []models.RawArticle{
		{Title: "a", URL: "https://example.com/x"},
		{Title: "b"},
		{Title: "c", URL: "https://example.com/x"},
		{Title: "d"},
		{Title: "e", URL: "https://example.com/y"},
	}
	out := Deduplicate(in)
	want := []string{"c", "b", "d", "e"}
	if len(out) != len(want) {
		t.Fatalf("got %d articles, want %d", len(out), len(want))
	}
	for i, title := range want {
		if out[i].Title != title {
			t.Errorf("out[%d].Title = %q, want %q", i, out[i].Title, title)
		}
	}
}

func TestDeduplicateEmptyInput(t *testing.T) {
	if out := Deduplicate(nil); len(out) != 0 {
		t.Errorf("got %d articles for nil input, want 0", len(out))
	}
}
