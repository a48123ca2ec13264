package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"
)

var (
	ErrDNS        = errors.New("dns lookup failed")
	ErrConnection = errors.New("connection failed")
	ErrTimeout    = errors.New("request timed out")
	ErrHTTPStatus = errors.New("unexpected http status")
)

// Page is the raw result of a single GET. Redirects are followed, so URL is
// the originally requested address, not the final one.
type Page struct {
	URL        string
	StatusCode int
	Body       string
}

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// DebugHTMLFile receives a copy of every fetched body when non-empty.
	DebugHTMLFile string
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	debugFile string
	logger    *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: opts.UserAgent,
		debugFile: opts.DebugHTMLFile,
		logger:    logger.With("component", "fetcher"),
	}
}

// Fetch issues exactly one GET. There are no retries; the caller decides
// whether a failure is fatal or skippable.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	f.logger.Info("fetching page", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d for %s", ErrHTTPStatus, resp.StatusCode, url)
	}

	f.logger.Info("page fetched", "url", url, "status", resp.StatusCode, "bytes", len(body))

	if f.debugFile != "" {
		if err := os.WriteFile(f.debugFile, body, 0644); err != nil {
			f.logger.Warn("failed to write debug html", "path", f.debugFile, "error", err)
		}
	}

	return &Page{URL: url, StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// classify maps transport errors onto the package's error taxonomy so that
// callers can branch with errors.Is instead of string matching.
func classify(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrDNS, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrConnection, err)
}
