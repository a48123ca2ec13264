// Package diagnose probes connectivity to a target shop when crawls start
// failing: DNS resolution first, then plain GETs with progressively smaller
// header profiles to tell blocking apart from outages.
package diagnose

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

type Report struct {
	Target string   `json:"target"`
	Host   string   `json:"host"`
	Addrs  []string `json:"addrs,omitempty"`
	Checks []Check  `json:"checks"`
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// headerProfiles are tried against the site root in order: a full browser
// profile, a minimal one, then no custom headers at all. A site that answers
// only the later profiles is filtering on headers, not down.
var headerProfiles = []struct {
	name    string
	headers map[string]string
}{
	{
		name: "browser headers",
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
			"Connection":      "keep-alive",
		},
	},
	{
		name: "minimal headers",
		headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (compatible; shop-crawler)",
		},
	},
	{
		name:    "no headers",
		headers: nil,
	},
}

type Runner struct {
	client *http.Client
	logger *slog.Logger
}

func NewRunner(timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Runner{
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "diagnose"),
	}
}

// Run probes the target URL's host and the URL itself and returns a report.
// Individual check failures land in the report, not in the returned error.
func (r *Runner) Run(ctx context.Context, target string) (*Report, error) {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid target url: %s", target)
	}

	report := &Report{Target: target, Host: parsed.Hostname()}

	addrs, err := net.DefaultResolver.LookupHost(ctx, parsed.Hostname())
	if err != nil {
		report.Checks = append(report.Checks, Check{
			Name:   "dns resolution",
			Detail: err.Error(),
		})
		return report, nil
	}
	report.Addrs = addrs
	report.Checks = append(report.Checks, Check{
		Name:   "dns resolution",
		OK:     true,
		Detail: strings.Join(addrs, ", "),
	})

	base := parsed.Scheme + "://" + parsed.Host
	for _, profile := range headerProfiles {
		report.Checks = append(report.Checks, r.probe(ctx, "site root ("+profile.name+")", base, profile.headers))
	}

	report.Checks = append(report.Checks, r.probe(ctx, "target page", target, headerProfiles[0].headers))

	return report, nil
}

func (r *Runner) probe(ctx context.Context, name, target string, headers map[string]string) Check {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Check{Name: name, Detail: err.Error()}
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Check{Name: name, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	detail := fmt.Sprintf("status %d, %d bytes, content-type %s",
		resp.StatusCode, len(body), resp.Header.Get("Content-Type"))

	r.logger.Info("probe finished", "check", name, "detail", detail)

	return Check{
		Name:   name,
		OK:     resp.StatusCode >= 200 && resp.StatusCode <= 299,
		Detail: detail,
	}
}
