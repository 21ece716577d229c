package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/prodcrawl/internal/analyzer"
	"github.com/jmylchreest/prodcrawl/internal/classifier"
	"github.com/jmylchreest/prodcrawl/internal/config"
	"github.com/jmylchreest/prodcrawl/internal/crawler"
	"github.com/jmylchreest/prodcrawl/internal/extract"
	"github.com/jmylchreest/prodcrawl/internal/fetch"
	"github.com/jmylchreest/prodcrawl/internal/logger"
	"github.com/jmylchreest/prodcrawl/internal/output"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl seed URLs and emit product page URLs",
	Long: `Crawl one or more e-commerce sites and stream the URLs classified
as product pages to a CSV file.

Each seed is crawled independently: links are followed within the
seed's host up to the depth limit, pages are fetched statically with a
headless-browser fallback, and every page is scored against the
product-page feature set.`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	flags := crawlCmd.Flags()

	flags.StringSliceP("url", "u", nil, "seed URL(s) to crawl (can be repeated)")
	flags.Int("max-depth", 3, "max link depth (0 = seed only)")
	flags.IntP("fetchers", "c", 5, "concurrent fetch workers")
	flags.StringP("output", "o", "product_urls.csv", "output CSV file")
	flags.String("fetch-mode", "smart", "fetch mode: smart, static, browser")
	flags.String("weights", "", "YAML file overriding classifier/analyzer weights")
	flags.String("patterns", "", "YAML file overriding URL pattern catalogs")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	logger.Setup(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("json_logs"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	seeds, _ := cmd.Flags().GetStringSlice("url")
	if len(seeds) == 0 {
		return cmd.Help()
	}

	cfg := config.Default()
	cfg.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	cfg.Fetchers, _ = cmd.Flags().GetInt("fetchers")
	cfg.Output, _ = cmd.Flags().GetString("output")

	if weightsPath, _ := cmd.Flags().GetString("weights"); weightsPath != "" {
		if err := cfg.MergeWeightsFile(weightsPath); err != nil {
			slog.Error("failed to load weights", "path", weightsPath, "error", err)
			return err
		}
	}
	if patternsPath, _ := cmd.Flags().GetString("patterns"); patternsPath != "" {
		if err := cfg.MergePatternsFile(patternsPath); err != nil {
			slog.Error("failed to load patterns", "path", patternsPath, "error", err)
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	modeStr, _ := cmd.Flags().GetString("fetch-mode")
	var mode fetch.Mode
	switch modeStr {
	case "smart", "":
		mode = fetch.ModeSmart
	case "static":
		mode = fetch.ModeStatic
	case "browser":
		mode = fetch.ModeBrowser
	default:
		return fmt.Errorf("unknown fetch mode: %s (use 'smart', 'static' or 'browser')", modeStr)
	}

	an, err := analyzer.New(cfg.Patterns, cfg.ProductURLWeights)
	if err != nil {
		slog.Error("failed to compile pattern catalogs", "error", err)
		return err
	}

	cl := classifier.New(an, cfg.FeatureWeights)
	ex := extract.New(cl, an)

	fetchCfg := fetch.DefaultConfig()
	fetchCfg.Mode = mode
	client := fetch.NewClient(fetchCfg)

	sink, err := output.NewCSV(cfg.Output)
	if err != nil {
		slog.Error("failed to open output", "path", cfg.Output, "error", err)
		return err
	}
	defer func() { _ = sink.Close() }()

	c := crawler.New(client, ex, an, sink, crawler.Config{
		MaxDepth: cfg.MaxDepth,
		Fetchers: cfg.Fetchers,
	})

	slog.Info("starting crawl",
		"seeds", len(seeds),
		"max_depth", cfg.MaxDepth,
		"fetchers", cfg.Fetchers,
		"fetch_mode", string(mode),
		"output", cfg.Output)

	records, err := c.CrawlAll(ctx, seeds)
	if err != nil {
		slog.Error("crawl finished with errors", "error", err)
	}

	slog.Info("all seeds crawled", "seeds", len(seeds), "products", len(records))
	return nil
}
