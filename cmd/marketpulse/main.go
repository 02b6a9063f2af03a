// MarketPulse — market news sentiment aggregation service
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rcamargo/marketpulse/api"
	"github.com/rcamargo/marketpulse/internal/classifier"
	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/internal/datasource"
	"github.com/rcamargo/marketpulse/internal/pipeline"
	"github.com/rcamargo/marketpulse/internal/store"
	"github.com/rcamargo/marketpulse/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketpulse",
	Short: "MarketPulse — market news sentiment aggregation",
	Long: `MarketPulse ingests news for configured asset categories, scores each
article's sentiment, aggregates per-category and per-asset statistics,
and serves the resulting report over HTTP for dashboards.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Best-effort .env load so NEWS_API_KEY can live in a dotfile.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildRunner wires the whole pipeline from configuration.
func buildRunner() (*pipeline.Runner, *store.FileStore, error) {
	src, err := datasource.New(cfg.News)
	if err != nil {
		return nil, nil, fmt.Errorf("news source: %w", err)
	}

	cls, err := classifier.New(cfg.Classifier)
	if err != nil {
		return nil, nil, fmt.Errorf("classifier: %w", err)
	}
	if remote, ok := cls.(*classifier.Remote); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := remote.Probe(ctx); err != nil {
			log.Printf("[main] classifier probe failed, articles will be skipped: %v", err)
		}
		cancel()
	}

	agg := pipeline.NewCategoryAggregator(src, cls, *cfg)
	builder := pipeline.NewBuilder(agg, *cfg)
	fs := store.NewFileStore(cfg.Pipeline.ReportPath)
	interval := time.Duration(cfg.Pipeline.IntervalMinutes) * time.Minute

	return pipeline.NewRunner(builder, fs, interval), fs, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("MarketPulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the sentiment pipeline once and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, fs, err := buildRunner()
		if err != nil {
			return err
		}

		fmt.Printf("🔍 Analyzing %d categories...\n", len(cfg.Categories))
		if err := runner.TryRun(cmd.Context()); err != nil {
			return err
		}

		report, err := fs.Load()
		if err != nil {
			return fmt.Errorf("load report: %w", err)
		}
		printSummary(report)
		fmt.Printf("\n💾 Report saved to %s\n", fs.Path())
		return nil
	},
}

// --- Serve Command (scheduler + API server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduler and HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, fs, err := buildRunner()
		if err != nil {
			return err
		}

		srv := api.NewServer(cfg, fs, runner)
		runner.Notify = func(event string) {
			srv.Hub().Broadcast(api.WSMessage{Type: event})
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go runner.Start(ctx)

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting MarketPulse API server on %s\n", addr)
		fmt.Printf("   Analysis interval: %d minutes\n", cfg.Pipeline.IntervalMinutes)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  MarketPulse — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    News Source:   %s\n", cfg.News.Provider)
		fmt.Printf("    Classifier:    %s\n", cfg.Classifier.Provider)
		fmt.Printf("    Categories:    %d\n", len(cfg.Categories))
		fmt.Printf("    Interval:      %d minutes\n", cfg.Pipeline.IntervalMinutes)
		fmt.Printf("    Report Path:   %s\n", cfg.Pipeline.ReportPath)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		// Last persisted report, if any.
		fs := store.NewFileStore(cfg.Pipeline.ReportPath)
		fmt.Println()
		if report, err := fs.Load(); err == nil {
			fmt.Printf("  Last Report:   %s\n", report.Timestamp)
		} else {
			fmt.Println("  Last Report:   none yet")
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// printSummary renders the per-category breakdown and the top-5 asset
// leaderboards on the console.
func printSummary(report *models.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════")
	fmt.Println("  Market Sentiment Summary")
	fmt.Printf("  %s\n", report.Timestamp)
	fmt.Println("═══════════════════════════════════════")

	for _, cat := range cfg.Categories {
		s, ok := report.MarketSentiment[cat.Name]
		if !ok {
			continue
		}
		fmt.Printf("\n📊 %s\n", cat.Name)
		fmt.Printf("  🟢 Positive: %.1f%%\n", s.Positive)
		fmt.Printf("  🔴 Negative: %.1f%%\n", s.Negative)
		fmt.Printf("  ⚪ Neutral:  %.1f%%\n", s.Neutral)
		fmt.Printf("  📰 Total mentions: %d\n", s.TotalMentions)
	}

	fmt.Println("\n🔥 Most talked about:")
	for i, asset := range top5(report.TopAssets.MostTalked) {
		fmt.Printf("%d. %s: %d mentions\n", i+1, asset.Asset, asset.Mentions)
	}

	fmt.Println("\n😀 Most positive sentiment:")
	for i, asset := range top5(report.TopAssets.MostPositive) {
		fmt.Printf("%d. %s: %.2f\n", i+1, asset.Asset, asset.SentimentAvg)
	}

	fmt.Println("\n😟 Most negative sentiment:")
	for i, asset := range top5(report.TopAssets.MostNegative) {
		fmt.Printf("%d. %s: %.2f\n", i+1, asset.Asset, asset.SentimentAvg)
	}
}

func top5(list []models.AssetStat) []models.AssetStat {
	if len(list) > 5 {
		return list[:5]
	}
	return list
}
