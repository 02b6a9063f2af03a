package classifier

import (
	"context"
	"math"
	"strings"
)

// ------------------------------------------------------------------
// Keyword-based classifier (offline, no model needed).
// When a remote model is configured the factory returns the remote
// backend instead; this one is the deterministic fallback.
// ------------------------------------------------------------------

// bullish / bearish keyword dictionaries (lowercase, stemmed).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buy": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"exceeds": 0.5, "soar": 0.7, "expansion": 0.4,
	"profit": 0.3, "gain": 0.4, "accumulate": 0.5, "adoption": 0.4,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"sell": 0.5, "weak": 0.4, "decline": 0.5, "loss": 0.4,
	"selloff": 0.7, "fall": 0.4, "correction": 0.5,
	"default": 0.7, "fraud": 0.8, "scam": 0.8, "investigation": 0.5,
	"cut": 0.3, "miss": 0.5, "warning": 0.5, "concern": 0.3,
}

// Keyword is a pure, stateless classifier; Classify never fails and
// Available is always true.
type Keyword struct{}

// NewKeyword creates the keyword classifier.
func NewKeyword() *Keyword { return &Keyword{} }

// Available always reports true; the keyword backend has no dependencies.
func (k *Keyword) Available() bool { return true }

// Classify scores the text against the bullish/bearish dictionaries
// and returns POSITIVE, NEGATIVE or NEUTRAL with a match-count based
// confidence.
func (k *Keyword) Classify(_ context.Context, text string) (Result, error) {
	lower := strings.ToLower(text)

	bullScore := 0.0
	bearScore := 0.0
	matches := 0

	for word, weight := range bullishWords {
		if strings.Contains(lower, word) {
			bullScore += weight
			matches++
		}
	}
	for word, weight := range bearishWords {
		if strings.Contains(lower, word) {
			bearScore += weight
			matches++
		}
	}

	if matches == 0 || bullScore == bearScore {
		return Result{Label: "NEUTRAL", Score: 0.5}, nil
	}

	// Confidence based on number of keyword matches.
	confidence := math.Min(float64(matches)*0.15+0.2, 0.85)

	label := "POSITIVE"
	if bearScore > bullScore {
		label = "NEGATIVE"
	}
	return Result{Label: label, Score: confidence}, nil
}
