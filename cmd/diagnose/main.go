package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/maltedev/shop-crawler/internal/config"
	"github.com/maltedev/shop-crawler/internal/diagnose"
	"github.com/maltedev/shop-crawler/internal/logging"
)

// Connectivity diagnostic for a target shop: DNS resolution plus GETs with
// progressively smaller header profiles. Useful when crawls start failing and
// it is unclear whether the site is down or filtering requests.
func main() {
	timeout := flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	target := flag.Arg(0)
	if target == "" {
		target = cfg.Crawl.DataSourceURL
	}
	if target == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <url>\n", os.Args[0])
		os.Exit(1)
	}

	runner := diagnose.NewRunner(*timeout, logger)

	report, err := runner.Run(context.Background(), target)
	if err != nil {
		logger.Error("diagnostic failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("failed to print report", "error", err)
	}

	if !report.OK() {
		os.Exit(1)
	}
}
