package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	os.Unsetenv("MARKETPULSE_NEWS_API_KEY")
	os.Unsetenv("NEWS_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// News defaults
	if cfg.News.Provider != "newsapi" {
		t.Errorf("News.Provider: got %q, want %q", cfg.News.Provider, "newsapi")
	}
	if cfg.News.BaseURL != "https://newsapi.org/v2/everything" {
		t.Errorf("News.BaseURL: got %q", cfg.News.BaseURL)
	}
	if cfg.News.PageSize != 100 {
		t.Errorf("News.PageSize: got %d, want 100", cfg.News.PageSize)
	}
	if cfg.News.FetchTimeoutSec != 10 {
		t.Errorf("News.FetchTimeoutSec: got %d, want 10", cfg.News.FetchTimeoutSec)
	}
	if cfg.News.WindowDays != 1 {
		t.Errorf("News.WindowDays: got %d, want 1", cfg.News.WindowDays)
	}

	// Classifier defaults
	if cfg.Classifier.Provider != "keyword" {
		t.Errorf("Classifier.Provider: got %q, want %q", cfg.Classifier.Provider, "keyword")
	}
	if cfg.Classifier.MaxTextLen != 512 {
		t.Errorf("Classifier.MaxTextLen: got %d, want 512", cfg.Classifier.MaxTextLen)
	}

	// Pipeline defaults
	if cfg.Pipeline.IntervalMinutes != 15 {
		t.Errorf("Pipeline.IntervalMinutes: got %d, want 15", cfg.Pipeline.IntervalMinutes)
	}
	if cfg.Pipeline.SampleSize != 10 {
		t.Errorf("Pipeline.SampleSize: got %d, want 10", cfg.Pipeline.SampleSize)
	}
	if cfg.Pipeline.ReportPath != "market_sentiment_data.json" {
		t.Errorf("Pipeline.ReportPath: got %q", cfg.Pipeline.ReportPath)
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 5000 {
		t.Errorf("API.Port: got %d, want 5000", cfg.API.Port)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}

	// Built-in categories fill in when the config file has none.
	if len(cfg.Categories) == 0 {
		t.Fatal("Categories should fall back to the built-in set")
	}
	if cfg.Categories[0].Name != "techs" {
		t.Errorf("Categories[0].Name: got %q, want %q", cfg.Categories[0].Name, "techs")
	}
}

func TestDefaultCategoriesOrderIsStable(t *testing.T) {
	want := []string{"techs", "criptos", "gold", "silver", "renewables"}
	cats := DefaultCategories()
	if len(cats) != len(want) {
		t.Fatalf("got %d categories, want %d", len(cats), len(want))
	}
	for i, name := range want {
		if cats[i].Name != name {
			t.Errorf("Categories[%d]: got %q, want %q", i, cats[i].Name, name)
		}
		if len(cats[i].Keywords) == 0 {
			t.Errorf("Categories[%d] (%s) has no keywords", i, name)
		}
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
categories:
  - name: "gold"
    keywords: ["gold", "GLD"]
  - name: "criptos"
    keywords: ["Bitcoin", "Ethereum"]
news:
  provider: "rss"
  rss_feeds:
    - "https://example.com/markets.rss"
  page_size: 50
classifier:
  provider: "remote"
  remote_url: "http://localhost:8501/classify"
pipeline:
  interval_minutes: 30
  report_path: "/tmp/report.json"
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Unsetenv("MARKETPULSE_NEWS_API_KEY")
	os.Unsetenv("NEWS_API_KEY")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if len(cfg.Categories) != 2 {
		t.Fatalf("Categories: got %d, want 2", len(cfg.Categories))
	}
	if cfg.Categories[0].Name != "gold" || cfg.Categories[1].Name != "criptos" {
		t.Errorf("category order not preserved: %+v", cfg.Categories)
	}
	if cfg.News.Provider != "rss" {
		t.Errorf("News.Provider: got %q, want %q", cfg.News.Provider, "rss")
	}
	if len(cfg.News.RSSFeeds) != 1 {
		t.Errorf("News.RSSFeeds: got %d entries", len(cfg.News.RSSFeeds))
	}
	if cfg.News.PageSize != 50 {
		t.Errorf("News.PageSize: got %d, want 50", cfg.News.PageSize)
	}
	if cfg.Classifier.Provider != "remote" {
		t.Errorf("Classifier.Provider: got %q", cfg.Classifier.Provider)
	}
	if cfg.Classifier.RemoteURL != "http://localhost:8501/classify" {
		t.Errorf("Classifier.RemoteURL: got %q", cfg.Classifier.RemoteURL)
	}
	if cfg.Pipeline.IntervalMinutes != 30 {
		t.Errorf("Pipeline.IntervalMinutes: got %d, want 30", cfg.Pipeline.IntervalMinutes)
	}
	if cfg.Pipeline.ReportPath != "/tmp/report.json" {
		t.Errorf("Pipeline.ReportPath: got %q", cfg.Pipeline.ReportPath)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── Validate ──

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Categories: []Category{{Name: "gold", Keywords: []string{"gold"}}},
			News:       NewsConfig{FetchTimeoutSec: 10},
			Classifier: ClassifierConfig{MaxTextLen: 512},
			Pipeline:   PipelineConfig{IntervalMinutes: 15, SampleSize: 10},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no categories", func(c *Config) { c.Categories = nil }},
		{"empty category name", func(c *Config) { c.Categories[0].Name = "   " }},
		{"no keywords", func(c *Config) { c.Categories[0].Keywords = nil }},
		{"empty keyword", func(c *Config) { c.Categories[0].Keywords = []string{""} }},
		{"duplicate category", func(c *Config) {
			c.Categories = append(c.Categories, Category{Name: "gold", Keywords: []string{"GLD"}})
		}},
		{"zero interval", func(c *Config) { c.Pipeline.IntervalMinutes = 0 }},
		{"zero sample size", func(c *Config) { c.Pipeline.SampleSize = 0 }},
		{"zero max text len", func(c *Config) { c.Classifier.MaxTextLen = 0 }},
		{"zero fetch timeout", func(c *Config) { c.News.FetchTimeoutSec = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() should reject %s", tt.name)
			}
		})
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	os.Setenv("MARKETPULSE_NEWS_API_KEY", "mp-key-1234567890")
	defer os.Unsetenv("MARKETPULSE_NEWS_API_KEY")

	cfg := &Config{}
	overrideFromEnv(cfg)

	if cfg.News.APIKey != "mp-key-1234567890" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
}

func TestOverrideFromEnvBareKey(t *testing.T) {
	os.Unsetenv("MARKETPULSE_NEWS_API_KEY")
	os.Setenv("NEWS_API_KEY", "bare-key-1234567890")
	defer os.Unsetenv("NEWS_API_KEY")

	cfg := &Config{}
	overrideFromEnv(cfg)

	if cfg.News.APIKey != "bare-key-1234567890" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	os.Unsetenv("MARKETPULSE_NEWS_API_KEY")
	os.Unsetenv("NEWS_API_KEY")

	cfg := &Config{News: NewsConfig{APIKey: "from-config"}}
	overrideFromEnv(cfg)

	if cfg.News.APIKey != "from-config" {
		t.Errorf("APIKey should stay as 'from-config' when env is unset, got %q", cfg.News.APIKey)
	}
}

// ── maskKey / CheckAPIKeys ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"sk-abcdef1234567890xyz", "sk-...xyz"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCheckAPIKeys(t *testing.T) {
	os.Unsetenv("MARKETPULSE_NEWS_API_KEY")
	os.Unsetenv("NEWS_API_KEY")

	statuses := CheckAPIKeys(&Config{})
	if len(statuses) != 1 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 1", len(statuses))
	}
	if statuses[0].IsSet {
		t.Error("NewsAPI key should not be set")
	}
	if statuses[0].Source != KeySourceNone {
		t.Errorf("Source: got %q, want %q", statuses[0].Source, KeySourceNone)
	}

	cfg := &Config{News: NewsConfig{APIKey: "config-key-long-enough"}}
	statuses = CheckAPIKeys(cfg)
	if !statuses[0].IsSet {
		t.Error("NewsAPI key should be set")
	}
	if statuses[0].Source != KeySourceConfig {
		t.Errorf("Source: got %q, want %q", statuses[0].Source, KeySourceConfig)
	}
	if statuses[0].Masked != "con...ugh" {
		t.Errorf("Masked: got %q, want %q", statuses[0].Masked, "con...ugh")
	}

	os.Setenv("NEWS_API_KEY", "config-key-long-enough")
	defer os.Unsetenv("NEWS_API_KEY")
	statuses = CheckAPIKeys(cfg)
	if statuses[0].Source != KeySourceEnv {
		t.Errorf("Source: got %q, want %q", statuses[0].Source, KeySourceEnv)
	}
}

// ── homeDir ──

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	h := homeDir()
	if h == "" {
		t.Error("homeDir() should not return empty string")
	}
}
