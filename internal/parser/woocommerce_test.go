package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shop-crawler/internal/models"
)

func TestParseProductPage(t *testing.T) {
	p := NewWooParser()

	html := `<!DOCTYPE html>
<html>
<body>
	<h1 class="product_title entry-title">Blue Mug</h1>
	<p class="price">
		<span class="woocommerce-Price-amount amount"><bdi>$1,299.50</bdi></span>
	</p>
	<div class="woocommerce-product-details__short-description">
		<p>A sturdy ceramic mug.</p>
		<p>Holds 350ml.</p>
	</div>
	<table class="shop_attributes">
		<tr>
			<th class="woocommerce-product-attributes-item__label">Color</th>
			<td class="woocommerce-product-attributes-item__value">Blue</td>
		</tr>
		<tr>
			<th class="woocommerce-product-attributes-item__label">برند</th>
			<td class="woocommerce-product-attributes-item__value">Acme</td>
		</tr>
		<tr>
			<th class="woocommerce-product-attributes-item__label">Empty</th>
			<td class="woocommerce-product-attributes-item__value"></td>
		</tr>
	</table>
	<figure class="woocommerce-product-gallery__image">
		<a href="/images/mug-large.jpg"><img src="/images/mug-thumb.jpg"></a>
	</figure>
	<div class="woocommerce-product-gallery__image">
		<img data-src="https://cdn.example.com/mug-lazy.jpg" src="placeholder.gif">
	</div>
	<span class="sku">MUG-001</span>
</body>
</html>`

	product, err := p.ParseProductPage(html, "https://shop.example.com/product/blue-mug/")
	require.NoError(t, err)

	assert.Equal(t, "Blue Mug", product.Name)
	assert.Equal(t, 1299.50, product.Price)
	assert.Equal(t, "A sturdy ceramic mug.\nHolds 350ml.", product.Description)
	assert.Equal(t, "MUG-001", product.SKU)
	assert.Equal(t, models.StatusPendingReview, product.Status)
	assert.Equal(t, "https://shop.example.com/product/blue-mug/", product.SourceURL)

	assert.Equal(t, "Blue", product.Attributes["Color"])
	assert.Equal(t, "Acme", product.Attributes["برند"])
	assert.Equal(t, "Acme", product.Brand)
	assert.NotContains(t, product.Attributes, "Empty")

	// Both the anchor and the img inside the figure match the gallery
	// selector; the anchor target comes first in document order.
	assert.Equal(t, []string{
		"https://shop.example.com/images/mug-large.jpg",
		"https://shop.example.com/images/mug-thumb.jpg",
		"https://cdn.example.com/mug-lazy.jpg",
	}, product.Images)
}

func TestParseProductPage_SKUFromSlug(t *testing.T) {
	p := NewWooParser()

	html := `<html><body>
		<h1 class="product_title">Blue Mug</h1>
		<p class="price"><span class="woocommerce-Price-amount">$12.99</span></p>
	</body></html>`

	product, err := p.ParseProductPage(html, "https://shop.example.com/product/blue-mug-7/")
	require.NoError(t, err)

	assert.Equal(t, "Blue Mug", product.Name)
	assert.Equal(t, 12.99, product.Price)
	assert.Equal(t, "blue-mug-7", product.SKU)
}

func TestParseProductPage_NoImages(t *testing.T) {
	p := NewWooParser()

	html := `<html><body><h1 class="product_title">Bare Product</h1></body></html>`

	product, err := p.ParseProductPage(html, "https://shop.example.com/product/bare/")
	require.NoError(t, err)

	assert.Empty(t, product.Images)
	assert.Empty(t, product.ImagePath)
}

func TestExtractPrice(t *testing.T) {
	p := NewWooParser()

	tests := []struct {
		name     string
		html     string
		expected float64
	}{
		{
			name:     "plain price",
			html:     `<p class="price"><span class="woocommerce-Price-amount">$12.99</span></p>`,
			expected: 12.99,
		},
		{
			name:     "grouping separators stripped",
			html:     `<p class="price"><span class="woocommerce-Price-amount">1,250,000 تومان</span></p>`,
			expected: 1250000,
		},
		{
			name:     "integer price",
			html:     `<p class="price"><span class="woocommerce-Price-amount">45</span></p>`,
			expected: 45,
		},
		{
			name:     "missing price element defaults to zero",
			html:     `<div>no price here</div>`,
			expected: 0,
		},
		{
			name:     "price element with no numeric token",
			html:     `<p class="price"><span class="woocommerce-Price-amount">call us</span></p>`,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := p.ParseProductPage("<html><body>"+tt.html+"</body></html>", "https://shop.example.com/product/x/")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, product.Price)
		})
	}
}

func TestExtractDescription_FallbackOrder(t *testing.T) {
	p := NewWooParser()

	t.Run("full description wins over short description", func(t *testing.T) {
		html := `<html><body>
			<div class="woocommerce-Tabs-panel--description"><p>Full text.</p></div>
			<div class="woocommerce-product-details__short-description"><p>Short text.</p></div>
		</body></html>`

		product, err := p.ParseProductPage(html, "https://shop.example.com/product/x/")
		require.NoError(t, err)
		assert.Equal(t, "Full text.", product.Description)
	})

	t.Run("short description as fallback", func(t *testing.T) {
		html := `<html><body>
			<div class="woocommerce-product-details__short-description"><p>Short text.</p></div>
		</body></html>`

		product, err := p.ParseProductPage(html, "https://shop.example.com/product/x/")
		require.NoError(t, err)
		assert.Equal(t, "Short text.", product.Description)
	})

	t.Run("empty container falls through to next selector", func(t *testing.T) {
		html := `<html><body>
			<div class="woocommerce-Tabs-panel--description">   </div>
			<div class="woocommerce-product-details__short-description">Still here.</div>
		</body></html>`

		product, err := p.ParseProductPage(html, "https://shop.example.com/product/x/")
		require.NoError(t, err)
		assert.Equal(t, "Still here.", product.Description)
	})

	t.Run("line breaks preserved", func(t *testing.T) {
		html := `<html><body>
			<div class="woocommerce-product-details__short-description">First line<br>Second line</div>
		</body></html>`

		product, err := p.ParseProductPage(html, "https://shop.example.com/product/x/")
		require.NoError(t, err)
		assert.Equal(t, "First line\nSecond line", product.Description)
	})

	t.Run("no match yields empty string", func(t *testing.T) {
		product, err := p.ParseProductPage("<html><body></body></html>", "https://shop.example.com/product/x/")
		require.NoError(t, err)
		assert.Empty(t, product.Description)
	})
}

func TestExtractImages(t *testing.T) {
	p := NewWooParser()

	t.Run("attribute priority", func(t *testing.T) {
		html := `<html><body>
			<div class="woocommerce-product-gallery__image">
				<img data-large_image="/img/large.jpg" data-src="/img/lazy.jpg" src="/img/small.jpg">
			</div>
		</body></html>`

		product, err := p.ParseProductPage(html, "https://shop.example.com/product/x/")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://shop.example.com/img/large.jpg"}, product.Images)
	})

	t.Run("duplicates collapse preserving discovery order", func(t *testing.T) {
		html := `<html><body>
			<figure class="woocommerce-product-gallery__image"><a href="/img/a.jpg"></a></figure>
			<figure class="woocommerce-product-gallery__image"><a href="/img/b.jpg"></a></figure>
			<figure class="woocommerce-product-gallery__image"><a href="/img/a.jpg"></a></figure>
		</body></html>`

		product, err := p.ParseProductPage(html, "https://shop.example.com/product/x/")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://shop.example.com/img/a.jpg",
			"https://shop.example.com/img/b.jpg",
		}, product.Images)
	})

	t.Run("all urls absolute", func(t *testing.T) {
		html := `<html><body>
			<div class="woocommerce-product-gallery__image"><img src="relative/path.jpg"></div>
			<div class="woocommerce-product-gallery__image"><img src="https://cdn.example.com/abs.jpg"></div>
		</body></html>`

		product, err := p.ParseProductPage(html, "https://shop.example.com/product/x/")
		require.NoError(t, err)

		for _, img := range product.Images {
			assert.True(t, strings.HasPrefix(img, "https://"), "expected absolute URL, got %s", img)
		}
	})
}

func TestExtractSKU(t *testing.T) {
	p := NewWooParser()

	tests := []struct {
		name      string
		html      string
		sourceURL string
		expected  string
	}{
		{
			name:      "sku element preferred",
			html:      `<span class="sku">ABC-123</span>`,
			sourceURL: "https://shop.example.com/product/something-else/",
			expected:  "ABC-123",
		},
		{
			name:      "placeholder n/a falls back to slug",
			html:      `<span class="sku">N/A</span>`,
			sourceURL: "https://shop.example.com/product/blue-mug-7/",
			expected:  "blue-mug-7",
		},
		{
			name:      "missing element falls back to slug",
			html:      ``,
			sourceURL: "https://shop.example.com/product/blue-mug-7/",
			expected:  "blue-mug-7",
		},
		{
			name:      "percent-encoded slug is decoded",
			html:      ``,
			sourceURL: "https://shop.example.com/product/%d8%b9%db%8c%d9%86%da%a9-7/",
			expected:  "عینک-7",
		},
		{
			name:      "special character runs collapse to one dash",
			html:      ``,
			sourceURL: "https://shop.example.com/product/big__sale!!mug/",
			expected:  "big-sale-mug",
		},
		{
			name:      "slug truncated to 50 characters",
			html:      ``,
			sourceURL: "https://shop.example.com/product/" + strings.Repeat("a", 80) + "/",
			expected:  strings.Repeat("a", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := p.ParseProductPage("<html><body>"+tt.html+"</body></html>", tt.sourceURL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, product.SKU)
			assert.LessOrEqual(t, len([]rune(product.SKU)), 50)
		})
	}
}

func TestExtractSKU_HashFallbackForUnusableSlug(t *testing.T) {
	p := NewWooParser()

	first, err := p.ParseProductPage("<html><body></body></html>", "https://shop.example.com/product/!!!/")
	require.NoError(t, err)

	// No letters or digits survive sanitization, so the SKU comes from a
	// hash of the URL: stable per URL, distinct across URLs, never empty.
	assert.Regexp(t, `^product-[0-9a-f]{12}$`, first.SKU)

	again, err := p.ParseProductPage("<html><body></body></html>", "https://shop.example.com/product/!!!/")
	require.NoError(t, err)
	assert.Equal(t, first.SKU, again.SKU)

	other, err := p.ParseProductPage("<html><body></body></html>", "https://shop.example.com/product/???/")
	require.NoError(t, err)
	assert.Regexp(t, `^product-[0-9a-f]{12}$`, other.SKU)
	assert.NotEqual(t, first.SKU, other.SKU)
}

func TestNameSynthesizedFromSKU(t *testing.T) {
	p := NewWooParser()

	product, err := p.ParseProductPage("<html><body></body></html>", "https://shop.example.com/product/mystery-item/")
	require.NoError(t, err)

	assert.Equal(t, "mystery-item", product.SKU)
	assert.Equal(t, "Unknown Product - mystery-item", product.Name)
	assert.Empty(t, product.Validate())
}
