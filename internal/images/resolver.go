package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"
)

// fileSafe matches everything that may not appear in an image filename stem.
var fileSafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type Resolver struct {
	client *http.Client
	dir    string
	logger *slog.Logger
}

func NewResolver(dir string, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Resolver{
		client: &http.Client{Timeout: timeout},
		dir:    dir,
		logger: logger.With("component", "image_resolver"),
	}
}

// ResolveAndSave downloads the primary image (the first discovered URL) and
// stores it under the sanitized SKU. A failure here is reported and yields an
// empty path; image problems never abort the pipeline.
func (r *Resolver) ResolveAndSave(ctx context.Context, imageURLs []string, sku string) (string, error) {
	if len(imageURLs) == 0 || sku == "" {
		return "", nil
	}

	imageURL := imageURLs[0]
	r.logger.Info("downloading image", "url", imageURL, "sku", sku)

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	filename := fileSafe.ReplaceAllString(sku, "-") + extensionFromURL(imageURL)
	imagePath := filepath.Join(r.dir, filename)

	out, err := os.Create(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(imagePath)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	r.logger.Info("image saved", "path", imagePath)
	return imagePath, nil
}

// extensionFromURL takes the extension from the URL path, ignoring the query
// string. CDNs frequently serve extensionless paths, hence the jpg default.
func extensionFromURL(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}

	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}

	return ".jpg"
}
