package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/maltedev/shop-crawler/internal/crawler"
)

type Handlers struct {
	crawler *crawler.Crawler
	logger  *slog.Logger
}

func NewHandlers(c *crawler.Crawler, logger *slog.Logger) *Handlers {
	return &Handlers{
		crawler: c,
		logger:  logger.With("component", "api"),
	}
}

// ScrapeRequest asks for a single product page to be scraped on demand.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeResponse carries the extracted record and whether it was forwarded
// to the catalog API.
type ScrapeResponse struct {
	Product   any  `json:"product"`
	Submitted bool `json:"submitted"`
}

// Scrape handles on-demand scraping of one product URL.
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	product, err := h.crawler.Scrape(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("scrape failed", "url", req.URL, "error", err)
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := ScrapeResponse{Product: product}

	if h.crawler.SubmitterConfigured() {
		if err := h.crawler.Submit(r.Context(), product); err != nil {
			h.logger.Error("submission failed", "sku", product.SKU, "error", err)
		} else {
			resp.Submitted = true
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// CrawlRequest asks for an incremental crawl of a category listing. Limit
// caps the items attempted in this run; when omitted the configured
// CRAWL_LIMIT applies.
type CrawlRequest struct {
	ListingURL string `json:"listing_url"`
	Limit      int    `json:"limit"`
}

// Crawl handles category crawl requests and returns the run summary.
func (h *Handlers) Crawl(w http.ResponseWriter, r *http.Request) {
	var req CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ListingURL == "" {
		h.respondError(w, http.StatusBadRequest, "listing_url is required")
		return
	}

	if req.Limit < 0 {
		h.respondError(w, http.StatusBadRequest, "limit must be at least 1")
		return
	}

	summary, err := h.crawler.RunCategory(r.Context(), req.ListingURL, req.Limit)
	if err != nil {
		h.logger.Error("category crawl failed", "listing_url", req.ListingURL, "error", err)
		h.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
