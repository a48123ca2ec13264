package submitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maltedev/shop-crawler/internal/models"
)

var (
	// ErrNotConfigured is returned when API_URL or API_KEY is missing.
	ErrNotConfigured = errors.New("submission endpoint not configured")
	ErrSubmission    = errors.New("submission rejected")
)

// maxBodyLog bounds how much of an error response lands in the logs.
const maxBodyLog = 512

// payload is the wire envelope the catalog API expects.
type payload struct {
	Products []*models.Product `json:"products"`
}

type Submitter struct {
	client *http.Client
	apiURL string
	apiKey string
	logger *slog.Logger
}

func New(apiURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Submitter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Submitter{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
		apiKey: apiKey,
		logger: logger.With("component", "submitter"),
	}
}

// Configured reports whether both endpoint and credential are present.
func (s *Submitter) Configured() bool {
	return s.apiURL != "" && s.apiKey != ""
}

// Submit POSTs one product to the catalog API. There is no retry; the caller
// decides whether a failure aborts the run or just skips the item.
func (s *Submitter) Submit(ctx context.Context, product *models.Product) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload{Products: []*models.Product{product}})
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	s.logger.Info("submitting product", "sku", product.SKU, "name", product.Name)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("submission rejected",
			"sku", product.SKU,
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return fmt.Errorf("%w: status %d: %s", ErrSubmission, resp.StatusCode, respBody)
	}

	s.logger.Info("product accepted", "sku", product.SKU, "status", resp.StatusCode)
	return nil
}
