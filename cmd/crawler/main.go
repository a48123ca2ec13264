package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/shop-crawler/internal/config"
	"github.com/maltedev/shop-crawler/internal/crawler"
	"github.com/maltedev/shop-crawler/internal/fetcher"
	"github.com/maltedev/shop-crawler/internal/images"
	"github.com/maltedev/shop-crawler/internal/logging"
	"github.com/maltedev/shop-crawler/internal/parser"
	"github.com/maltedev/shop-crawler/internal/ratelimit"
	"github.com/maltedev/shop-crawler/internal/submitter"
)

// Single-page mode: scrape one product URL, print the full record to stdout
// and submit it when the catalog API is configured.
func main() {
	urlFlag := flag.String("url", "", "Product URL (overrides DATA_SOURCE_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	targetURL := *urlFlag
	if targetURL == "" {
		targetURL = cfg.Crawl.DataSourceURL
	}
	if targetURL == "" {
		logger.Error("DATA_SOURCE_URL is not set and no -url flag given")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	f := fetcher.New(fetcher.Options{
		Timeout:       cfg.Crawl.HTTPTimeout,
		UserAgent:     cfg.Crawl.UserAgent,
		DebugHTMLFile: cfg.Crawl.DebugHTMLFile,
	}, logger)
	sub := submitter.New(cfg.API.URL, cfg.API.Key, cfg.API.Timeout, logger)
	resolver := images.NewResolver(cfg.Crawl.ImageDir, cfg.Crawl.ImageTimeout, logger)

	c := crawler.New(f, parser.NewWooParser(), resolver, nil, sub, ratelimit.NoDelay{}, cfg.Crawl.Limit, logger)

	product, err := c.Scrape(ctx, targetURL)
	if err != nil {
		logger.Error("failed to extract product data", "url", targetURL, "error", err)
		os.Exit(1)
	}

	// Full record on stdout for review, non-ASCII text kept readable.
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(product); err != nil {
		logger.Error("failed to print product", "error", err)
	}

	if c.SubmitterConfigured() {
		if err := c.Submit(ctx, product); err != nil {
			logger.Error("submission failed", "sku", product.SKU, "error", err)
		}
	} else {
		logger.Info("skipping submission: API_URL or API_KEY not configured")
	}

	fmt.Fprintln(os.Stderr, "crawler finished")
}
