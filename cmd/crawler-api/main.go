package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/maltedev/shop-crawler/internal/api"
	"github.com/maltedev/shop-crawler/internal/config"
	"github.com/maltedev/shop-crawler/internal/crawler"
	"github.com/maltedev/shop-crawler/internal/dedup"
	"github.com/maltedev/shop-crawler/internal/fetcher"
	"github.com/maltedev/shop-crawler/internal/images"
	"github.com/maltedev/shop-crawler/internal/logging"
	"github.com/maltedev/shop-crawler/internal/observability"
	"github.com/maltedev/shop-crawler/internal/parser"
	"github.com/maltedev/shop-crawler/internal/ratelimit"
	"github.com/maltedev/shop-crawler/internal/submitter"
)

// HTTP service exposing on-demand scraping and category crawls.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := dedup.Open(ctx, cfg.Dedup)
	if err != nil {
		logger.Error("failed to open dedup store", "backend", cfg.Dedup.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	f := fetcher.New(fetcher.Options{
		Timeout:   cfg.Crawl.HTTPTimeout,
		UserAgent: cfg.Crawl.UserAgent,
	}, logger)
	sub := submitter.New(cfg.API.URL, cfg.API.Key, cfg.API.Timeout, logger)
	resolver := images.NewResolver(cfg.Crawl.ImageDir, cfg.Crawl.ImageTimeout, logger)
	limiter := ratelimit.NewFixedDelay(cfg.Crawl.Delay)

	c := crawler.New(f, parser.NewWooParser(), resolver, store, sub, limiter, cfg.Crawl.Limit, logger)
	handlers := api.NewHandlers(c, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape", handlers.Scrape)
		r.Post("/crawl", handlers.Crawl)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("starting crawler API", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
