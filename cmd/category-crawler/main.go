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
	"github.com/maltedev/shop-crawler/internal/dedup"
	"github.com/maltedev/shop-crawler/internal/fetcher"
	"github.com/maltedev/shop-crawler/internal/images"
	"github.com/maltedev/shop-crawler/internal/logging"
	"github.com/maltedev/shop-crawler/internal/parser"
	"github.com/maltedev/shop-crawler/internal/ratelimit"
	"github.com/maltedev/shop-crawler/internal/submitter"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <listing-url>\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Incrementally crawls a category listing page: new product URLs are")
	fmt.Fprintln(os.Stderr, "scraped, submitted to the catalog API and recorded, up to CRAWL_LIMIT")
	fmt.Fprintln(os.Stderr, "items per run.")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	listingURL := flag.Arg(0)
	if listingURL == "" {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	// Category mode records a URL only after its submission succeeded, so an
	// unconfigured API would fail every item. Refuse to start instead.
	if cfg.API.URL == "" || cfg.API.Key == "" {
		logger.Error("API_URL and API_KEY are required in category mode")
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

	store, err := dedup.Open(ctx, cfg.Dedup)
	if err != nil {
		logger.Error("failed to open dedup store", "backend", cfg.Dedup.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	f := fetcher.New(fetcher.Options{
		Timeout:       cfg.Crawl.HTTPTimeout,
		UserAgent:     cfg.Crawl.UserAgent,
		DebugHTMLFile: cfg.Crawl.DebugHTMLFile,
	}, logger)
	sub := submitter.New(cfg.API.URL, cfg.API.Key, cfg.API.Timeout, logger)
	resolver := images.NewResolver(cfg.Crawl.ImageDir, cfg.Crawl.ImageTimeout, logger)
	limiter := ratelimit.NewFixedDelay(cfg.Crawl.Delay)

	c := crawler.New(f, parser.NewWooParser(), resolver, store, sub, limiter, cfg.Crawl.Limit, logger)

	summary, err := c.RunCategory(ctx, listingURL, cfg.Crawl.Limit)
	if err != nil {
		logger.Error("category crawl failed", "listing_url", listingURL, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		logger.Error("failed to print summary", "error", err)
	}
}
