package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shop-crawler/internal/dedup"
	"github.com/maltedev/shop-crawler/internal/fetcher"
	"github.com/maltedev/shop-crawler/internal/models"
	"github.com/maltedev/shop-crawler/internal/observability"
	"github.com/maltedev/shop-crawler/internal/parser"
	"github.com/maltedev/shop-crawler/internal/ratelimit"
)

var ErrNoListingURL = errors.New("category mode requires a listing URL")

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Page, error)
}

type ImageResolver interface {
	ResolveAndSave(ctx context.Context, imageURLs []string, sku string) (string, error)
}

type Submitter interface {
	Configured() bool
	Submit(ctx context.Context, product *models.Product) error
}

// Crawler sequences fetch, extract, image download, submission and dedup
// bookkeeping. Everything runs sequentially: one request in flight at a time.
type Crawler struct {
	fetcher Fetcher
	parser  parser.Parser
	images  ImageResolver
	store   dedup.Store
	submit  Submitter
	limiter ratelimit.Limiter
	limit   int
	runID   string
	logger  *slog.Logger
}

func New(f Fetcher, p parser.Parser, images ImageResolver, store dedup.Store, submit Submitter, limiter ratelimit.Limiter, limit int, logger *slog.Logger) *Crawler {
	runID := uuid.New().String()

	return &Crawler{
		fetcher: f,
		parser:  p,
		images:  images,
		store:   store,
		submit:  submit,
		limiter: limiter,
		limit:   limit,
		runID:   runID,
		logger:  logger.With("component", "crawler", "run_id", runID),
	}
}

// Scrape fetches and extracts a single product page, downloading the primary
// image when one exists. Image failures are reported and leave image_path
// empty; they never fail the record.
func (c *Crawler) Scrape(ctx context.Context, url string) (*models.Product, error) {
	page, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		observability.FetchFailures.Inc()
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	observability.PagesFetched.Inc()

	product, err := c.parser.ParseProductPage(page.Body, url)
	if err != nil {
		return nil, fmt.Errorf("failed to extract product from %s: %w", url, err)
	}

	product.CrawlerPayload["run_id"] = c.runID
	product.CrawlerPayload["fetched_at"] = time.Now().UTC().Format(time.RFC3339)

	if c.images != nil {
		path, err := c.images.ResolveAndSave(ctx, product.Images, product.SKU)
		if err != nil {
			c.logger.Warn("image download failed", "sku", product.SKU, "error", err)
		} else if path != "" {
			product.ImagePath = path
		}
	}

	c.logger.Info("product extracted",
		"sku", product.SKU,
		"name", product.Name,
		"price", product.Price,
		"images", len(product.Images),
		"attributes", len(product.Attributes),
	)

	return product, nil
}

// Submit forwards one record to the catalog API when one is configured.
func (c *Crawler) Submit(ctx context.Context, product *models.Product) error {
	if err := c.submit.Submit(ctx, product); err != nil {
		observability.SubmissionFailures.Inc()
		return err
	}

	observability.ProductsSubmitted.Inc()
	return nil
}

// SubmitterConfigured reports whether the crawler can forward records.
func (c *Crawler) SubmitterConfigured() bool {
	return c.submit.Configured()
}

// CategorySummary is the terminal report of a category run.
type CategorySummary struct {
	RunID        string `json:"run_id"`
	LinksFound   int    `json:"links_found"`
	AlreadyKnown int    `json:"already_known"`
	NewLinks     int    `json:"new_links"`
	Attempted    int    `json:"attempted"`
	Submitted    int    `json:"submitted"`
	Failed       int    `json:"failed"`
	LimitReached bool   `json:"limit_reached"`
}

// RunCategory crawls a listing page incrementally: only URLs absent from the
// dedup store are attempted, at most limit per run, with the rate limiter
// spacing consecutive items. A limit of zero or less falls back to the
// configured default. A URL is recorded only after its submission succeeded;
// failed items stay unrecorded so a later run retries them.
func (c *Crawler) RunCategory(ctx context.Context, listingURL string, limit int) (*CategorySummary, error) {
	if listingURL == "" {
		return nil, ErrNoListingURL
	}
	if c.store == nil {
		return nil, errors.New("category mode requires a dedup store")
	}
	if limit <= 0 {
		limit = c.limit
	}

	summary := &CategorySummary{RunID: c.runID}

	if err := c.store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dedup store: %w", err)
	}

	listing, err := c.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		observability.FetchFailures.Inc()
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}
	observability.PagesFetched.Inc()

	links, err := parser.CollectProductLinks(listing.Body, listingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to collect product links: %w", err)
	}
	summary.LinksFound = len(links)

	// Iteration order over the set is unspecified; the dedup store makes
	// repeated runs incremental regardless of which items go first.
	newLinks := make([]string, 0, len(links))
	for link := range links {
		if c.store.Contains(link) {
			summary.AlreadyKnown++
			observability.URLsSkipped.Inc()
			continue
		}
		newLinks = append(newLinks, link)
	}
	summary.NewLinks = len(newLinks)

	c.logger.Info("listing crawled",
		"url", listingURL,
		"links", summary.LinksFound,
		"known", summary.AlreadyKnown,
		"new", summary.NewLinks,
	)

	if summary.NewLinks == 0 {
		c.logger.Info("no new products to crawl")
		return summary, nil
	}

	for _, link := range newLinks {
		if summary.Attempted >= limit {
			summary.LimitReached = true
			c.logger.Info("crawl limit reached", "limit", limit, "remaining", summary.NewLinks-summary.Attempted)
			break
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		summary.Attempted++

		if err := c.processItem(ctx, link); err != nil {
			summary.Failed++
			c.logger.Error("skipping product", "url", link, "error", err)
			continue
		}

		summary.Submitted++
	}

	c.logger.Info("category run finished",
		"attempted", summary.Attempted,
		"submitted", summary.Submitted,
		"failed", summary.Failed,
		"limit_reached", summary.LimitReached,
	)

	return summary, nil
}

// processItem runs the full pipeline for one product URL. Only when every
// stage succeeded does the URL land in the dedup store.
func (c *Crawler) processItem(ctx context.Context, url string) error {
	product, err := c.Scrape(ctx, url)
	if err != nil {
		return err
	}

	if err := c.Submit(ctx, product); err != nil {
		return err
	}

	if err := c.store.Record(ctx, url); err != nil {
		// The product is already submitted; failing to record only costs a
		// duplicate submission on the next run.
		c.logger.Error("failed to record crawled url", "url", url, "error", err)
	}

	return nil
}
