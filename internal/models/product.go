package models

// StatusPendingReview is the status every freshly crawled product carries.
// Review and activation happen on the API side, never in the crawler.
const StatusPendingReview = "PendingReview"

type Product struct {
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Status         string            `json:"status"`
	Images         []string          `json:"images"`
	Attributes     map[string]string `json:"attributes"`
	Category       string            `json:"category"`
	SourceURL      string            `json:"source_url"`
	Brand          string            `json:"brand"`
	StockQuantity  int               `json:"stock_quantity"`
	ImagePath      string            `json:"image_path,omitempty"`
	CrawlerPayload map[string]any    `json:"crawler_payload"`
}

func NewProduct(sourceURL string) *Product {
	return &Product{
		Status:         StatusPendingReview,
		Images:         make([]string, 0),
		Attributes:     make(map[string]string),
		SourceURL:      sourceURL,
		CrawlerPayload: make(map[string]any),
	}
}

func (p *Product) Validate() []string {
	var errors []string

	if p.SKU == "" {
		errors = append(errors, "SKU is required")
	}

	if len(p.SKU) > 50 {
		errors = append(errors, "SKU must not exceed 50 characters")
	}

	if p.Price < 0 {
		errors = append(errors, "Price must not be negative")
	}

	if p.SourceURL == "" {
		errors = append(errors, "Source URL is required")
	}

	return errors
}
