package parser

import (
	"github.com/maltedev/shop-crawler/internal/models"
)

type Parser interface {
	ParseProductPage(html string, sourceURL string) (*models.Product, error)
}
