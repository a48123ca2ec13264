package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listingLinkSelector matches the product-title anchors WooCommerce themes
// render on category and shop pages.
const listingLinkSelector = "a.woocommerce-LoopProduct-link, h2.woocommerce-loop-product__title a, li.product h2 a"

// CollectProductLinks extracts the set of product URLs from a listing page.
// The result is a genuine set: duplicates within the page collapse and
// iteration order is unspecified. Callers filter it against the dedup store,
// so crawl order across runs carries no guarantee.
func CollectProductLinks(htmlText string, baseURL string) (map[string]struct{}, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	links := make(map[string]struct{})

	doc.Find(listingLinkSelector).Each(func(_ int, anchor *goquery.Selection) {
		href, exists := anchor.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}

		if resolved := resolveURL(base, strings.TrimSpace(href)); resolved != "" {
			links[resolved] = struct{}{}
		}
	})

	return links, nil
}
