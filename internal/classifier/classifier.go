package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/pkg/models"
)

// ErrUnavailable is returned when the classifier backend cannot serve
// requests (remote model down, never probed successfully, etc.).
var ErrUnavailable = errors.New("classifier unavailable")

// Result is the raw label/score pair produced by a classifier backend.
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier turns a piece of article text into a sentiment label.
type Classifier interface {
	// Classify scores a single text. Implementations may call out to a
	// remote model; callers should pass a context with a deadline.
	Classify(ctx context.Context, text string) (Result, error)

	// Available reports whether the backend can currently serve requests.
	Available() bool
}

// MapLabel converts a backend label into the polarity/confidence pair
// used throughout the pipeline. Unrecognized labels count as neutral
// with a flat 0.5 confidence.
func MapLabel(res Result) (models.Polarity, float64) {
	switch res.Label {
	case "POSITIVE":
		return models.Positive, res.Score
	case "NEGATIVE":
		return models.Negative, res.Score
	default:
		return models.Neutral, 0.5
	}
}

// New returns the Classifier selected by configuration.
func New(cfg config.ClassifierConfig) (Classifier, error) {
	switch cfg.Provider {
	case "keyword":
		return NewKeyword(), nil
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("remote classifier requires a URL")
		}
		return NewRemote(cfg), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}
