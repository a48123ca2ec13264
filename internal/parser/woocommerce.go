package parser

import (
	"crypto/sha1"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/maltedev/shop-crawler/internal/models"
)

// brandAttributeLabel is the attribute-table label that doubles as the brand
// field on the shops this crawler targets.
const brandAttributeLabel = "برند"

const maxSKULength = 50

// descriptionSelectors are tried in order; the first non-empty match wins.
// Full description panel first, short description and summary as fallbacks.
var descriptionSelectors = []string{
	".woocommerce-Tabs-panel--description",
	"#tab-description",
	".woocommerce-product-details__short-description",
	".entry-summary .summary",
}

// imageAttributePriority handles lazy-loaded galleries: the anchor target and
// the data-* attributes carry the real image long before src does.
var imageAttributePriority = []string{"href", "data-large_image", "data-src", "src"}

const gallerySelector = "figure.woocommerce-product-gallery__image a, .woocommerce-product-gallery__image img"

type WooParser struct {
	priceToken *regexp.Regexp
	slugRuns   *regexp.Regexp
}

func NewWooParser() *WooParser {
	return &WooParser{
		priceToken: regexp.MustCompile(`[\d,]+(?:\.\d+)?`),
		slugRuns:   regexp.MustCompile(`[^\p{L}\p{N}]+`),
	}
}

// ParseProductPage turns a product page into a normalized record. Every rule
// degrades to a default on its own; only an unparseable document errors out,
// so one broken page never takes down a category run.
func (p *WooParser) ParseProductPage(htmlText string, sourceURL string) (*models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	product := models.NewProduct(sourceURL)

	product.Name = p.extractName(doc)
	product.Price = p.extractPrice(doc)
	product.Description = p.extractDescription(doc)
	p.extractAttributes(doc, product)
	product.Images = p.extractImages(doc, sourceURL)
	product.SKU = p.extractSKU(doc, sourceURL)

	if product.Name == "" {
		product.Name = "Unknown Product - " + product.SKU
	}

	return product, nil
}

func (p *WooParser) extractName(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1.product_title").First().Text())
}

func (p *WooParser) extractPrice(doc *goquery.Document) float64 {
	priceText := strings.TrimSpace(doc.Find(".price .woocommerce-Price-amount").First().Text())
	if priceText == "" {
		return 0
	}

	token := p.priceToken.FindString(priceText)
	if token == "" {
		return 0
	}

	// Commas are grouping separators on these shops, never decimals.
	value, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil || value < 0 {
		return 0
	}

	return value
}

func (p *WooParser) extractDescription(doc *goquery.Document) string {
	for _, selector := range descriptionSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		if text := flattenText(sel); text != "" {
			return text
		}
	}

	return ""
}

func (p *WooParser) extractAttributes(doc *goquery.Document, product *models.Product) {
	doc.Find("table.shop_attributes tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th.woocommerce-product-attributes-item__label").First().Text())
		value := strings.TrimSpace(row.Find("td.woocommerce-product-attributes-item__value").First().Text())

		if label == "" || value == "" {
			return
		}

		product.Attributes[label] = value

		if label == brandAttributeLabel && product.Brand == "" {
			product.Brand = value
		}
	})
}

func (p *WooParser) extractImages(doc *goquery.Document, sourceURL string) []string {
	base, err := url.Parse(sourceURL)
	if err != nil {
		base = nil
	}

	images := make([]string, 0)
	seen := make(map[string]bool)

	doc.Find(gallerySelector).Each(func(_ int, elem *goquery.Selection) {
		for _, attr := range imageAttributePriority {
			raw, exists := elem.Attr(attr)
			if !exists || strings.TrimSpace(raw) == "" {
				continue
			}

			resolved := resolveURL(base, strings.TrimSpace(raw))
			if resolved != "" && !seen[resolved] {
				seen[resolved] = true
				images = append(images, resolved)
			}
			break
		}
	})

	return images
}

func (p *WooParser) extractSKU(doc *goquery.Document, sourceURL string) string {
	sku := strings.TrimSpace(doc.Find(".sku").First().Text())
	if sku != "" && !strings.EqualFold(sku, "n/a") {
		return sku
	}

	return p.skuFromURL(sourceURL)
}

// skuFromURL derives a SKU from the last path segment: percent-decoded,
// non-alphanumeric runs collapsed to a single dash, at most 50 characters.
// A segment with no letters or digits at all falls back to a hash of the
// URL so the SKU is never empty.
func (p *WooParser) skuFromURL(sourceURL string) string {
	trimmed := strings.TrimRight(sourceURL, "/")
	slug := trimmed[strings.LastIndex(trimmed, "/")+1:]

	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}

	slug = p.slugRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if runes := []rune(slug); len(runes) > maxSKULength {
		slug = string(runes[:maxSKULength])
	}

	slug = strings.Trim(slug, "-")
	if slug == "" {
		sum := sha1.Sum([]byte(sourceURL))
		return fmt.Sprintf("product-%x", sum[:6])
	}

	return slug
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	if base != nil {
		parsed = base.ResolveReference(parsed)
	}

	if !parsed.IsAbs() {
		return ""
	}

	return parsed.String()
}

// flattenText renders a selection as plain text with line breaks preserved:
// <br> becomes a newline and block elements terminate their line.
func flattenText(sel *goquery.Selection) string {
	var b strings.Builder

	for _, node := range sel.Nodes {
		writeNodeText(node, &b)
	}

	lines := strings.Split(b.String(), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}

func writeNodeText(node *html.Node, b *strings.Builder) {
	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
		return
	case html.ElementNode:
		if node.Data == "br" {
			b.WriteString("\n")
			return
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeNodeText(child, b)
	}

	if node.Type == html.ElementNode {
		switch node.Data {
		case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "ul", "ol":
			b.WriteString("\n")
		}
	}
}
