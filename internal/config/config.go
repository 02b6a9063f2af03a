// Package config handles configuration loading for MarketPulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Categories []Category       `mapstructure:"categories" yaml:"categories"`
	News       NewsConfig       `mapstructure:"news"       yaml:"news"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"   yaml:"pipeline"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// Category groups related keywords tracked as one market segment.
// Categories are a slice, not a map: the configured order is the iteration
// order everywhere in the pipeline, which keeps asset rankings reproducible.
type Category struct {
	Name     string   `mapstructure:"name"     yaml:"name"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

// NewsConfig holds news source settings.
type NewsConfig struct {
	Provider        string   `mapstructure:"provider"          yaml:"provider"` // "newsapi" or "rss"
	APIKey          string   `mapstructure:"api_key"           yaml:"api_key"`
	BaseURL         string   `mapstructure:"base_url"          yaml:"base_url"`
	RSSFeeds        []string `mapstructure:"rss_feeds"         yaml:"rss_feeds"`
	PageSize        int      `mapstructure:"page_size"         yaml:"page_size"`
	FetchTimeoutSec int      `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
	WindowDays      int      `mapstructure:"window_days"       yaml:"window_days"`
}

// ClassifierConfig holds sentiment classifier settings.
type ClassifierConfig struct {
	Provider   string `mapstructure:"provider"     yaml:"provider"` // "keyword" or "remote"
	RemoteURL  string `mapstructure:"remote_url"   yaml:"remote_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
	MaxTextLen int    `mapstructure:"max_text_len" yaml:"max_text_len"`
}

// PipelineConfig holds aggregation pipeline settings.
type PipelineConfig struct {
	IntervalMinutes      int    `mapstructure:"interval_minutes"      yaml:"interval_minutes"`
	SampleSize           int    `mapstructure:"sample_size"           yaml:"sample_size"`
	ConcurrentCategories int    `mapstructure:"concurrent_categories" yaml:"concurrent_categories"`
	ReportPath           string `mapstructure:"report_path"           yaml:"report_path"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketpulse/config.yaml (home directory)
//  3. /etc/marketpulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETPULSE_<SECTION>_<KEY>, e.g., MARKETPULSE_NEWS_API_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketpulse"))
	v.AddConfigPath("/etc/marketpulse")

	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyFallbacks(&cfg)
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyFallbacks(&cfg)
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects malformed configuration. A validation failure is fatal
// to the whole run and happens before any fetch.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: at least one asset category is required")
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("config: category %d has an empty name", i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("config: duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("config: category %q has no keywords", cat.Name)
		}
		for _, kw := range cat.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("config: category %q has an empty keyword", cat.Name)
			}
		}
	}
	if c.Pipeline.IntervalMinutes <= 0 {
		return fmt.Errorf("config: pipeline.interval_minutes must be positive")
	}
	if c.Pipeline.SampleSize <= 0 {
		return fmt.Errorf("config: pipeline.sample_size must be positive")
	}
	if c.Classifier.MaxTextLen <= 0 {
		return fmt.Errorf("config: classifier.max_text_len must be positive")
	}
	if c.News.FetchTimeoutSec <= 0 {
		return fmt.Errorf("config: news.fetch_timeout_sec must be positive")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News source defaults (NewsAPI /v2/everything)
	v.SetDefault("news.provider", "newsapi")
	v.SetDefault("news.base_url", "https://newsapi.org/v2/everything")
	v.SetDefault("news.page_size", 100)
	v.SetDefault("news.fetch_timeout_sec", 10)
	v.SetDefault("news.window_days", 1)

	// Classifier defaults
	v.SetDefault("classifier.provider", "keyword")
	v.SetDefault("classifier.timeout_sec", 10)
	v.SetDefault("classifier.max_text_len", 512)

	// Pipeline defaults
	v.SetDefault("pipeline.interval_minutes", 15)
	v.SetDefault("pipeline.sample_size", 10)
	v.SetDefault("pipeline.concurrent_categories", 4)
	v.SetDefault("pipeline.report_path", "market_sentiment_data.json")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// applyFallbacks fills values viper cannot default (slices of structs).
func applyFallbacks(cfg *Config) {
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The bare NEWS_API_KEY form is also honored for drop-in compatibility with
// existing dashboard deployments.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("MARKETPULSE_NEWS_API_KEY"); key != "" {
		cfg.News.APIKey = key
	}
	if key := os.Getenv("NEWS_API_KEY"); cfg.News.APIKey == "" && key != "" {
		cfg.News.APIKey = key
	}
}

// DefaultCategories returns the built-in tracked asset categories.
func DefaultCategories() []Category {
	return []Category{
		{
			Name: "techs",
			Keywords: []string{
				"Apple", "Microsoft", "Google", "Amazon", "Tesla",
				"NVIDIA", "Meta", "Intel", "AMD", "Qualcomm",
				"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
				"tech", "technology", "smartphone", "cloud",
				"artificial intelligence", "AI", "machine learning",
			},
		},
		{
			Name: "criptos",
			Keywords: []string{
				"Bitcoin", "Ethereum", "BTC", "ETH", "Cardano", "ADA",
				"Solana", "SOL", "Polkadot", "DOT", "Ripple", "XRP",
				"Dogecoin", "DOGE", "cryptocurrency", "crypto", "blockchain",
				"DeFi", "NFT", "Web3", "token", "altcoin", "Bitcoin Cash",
				"Litecoin", "LTC", "Monero", "XMR",
			},
		},
		{
			Name: "gold",
			Keywords: []string{
				"gold", "GLD", "aurum", "precious metals",
				"bullion", "troy ounce gold",
				"gold price", "gold market",
			},
		},
		{
			Name: "silver",
			Keywords: []string{
				"silver", "SLV", "argentum",
				"troy ounce silver",
				"silver price", "silver market",
			},
		},
		{
			Name: "renewables",
			Keywords: []string{
				"NextEra", "solar", "wind power", "renewable energy",
			},
		},
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
