package datasource

import (
	"fmt"

	"github.com/rcamargo/marketpulse/internal/config"
)

// New returns the Source selected by configuration.
func New(cfg config.NewsConfig) (Source, error) {
	switch cfg.Provider {
	case "newsapi":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("newsapi source requires an API key")
		}
		return NewNewsAPI(cfg), nil
	case "rss":
		return NewRSS(cfg), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}
}
