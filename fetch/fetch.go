// Package fetch retrieves raw profile HTML for the scrape adapters.
//
// Fetches carry a realistic browser User-Agent and are rate limited per
// domain so concurrent resolutions cannot hammer a single origin. When a
// render proxy is configured, requests are routed through it so platforms
// that only populate follower counts client-side still return usable markup.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// UserAgent is the browser User-Agent used for every scrape fetch.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

// maxBodySize caps response reads; profile pages past this point carry
// nothing the extractor needs.
const maxBodySize = 5 << 20

// Fetcher performs scrape fetches. The zero value is not usable; construct
// with New.
type Fetcher struct {
	httpClient *http.Client
	limiter    *domainLimiter
	logger     *slog.Logger
	proxyURL   string
	proxyKey   string
}

// Option configures a Fetcher.
type Option func(*config)

type config struct {
	httpClient *http.Client
	logger     *slog.Logger
	proxyURL   string
	proxyKey   string
	minDelay   time.Duration
}

// WithRenderProxy routes fetches through a render-proxy service capable of
// executing client-side JavaScript before returning HTML.
func WithRenderProxy(endpoint, key string) Option {
	return func(c *config) {
		c.proxyURL = endpoint
		c.proxyKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMinDelay sets the minimum delay between fetches to the same domain.
func WithMinDelay(d time.Duration) Option {
	return func(c *config) { c.minDelay = d }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	cfg := &config{
		logger:   slog.Default(),
		minDelay: 600 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Fetcher{
		httpClient: cfg.httpClient,
		limiter:    newDomainLimiter(cfg.minDelay),
		logger:     cfg.logger,
		proxyURL:   cfg.proxyURL,
		proxyKey:   cfg.proxyKey,
	}
}

// HTML fetches a page and returns its body. Non-200 statuses are errors.
// There are no internal retries; callers decide whether to try another URL.
func (f *Fetcher) HTML(ctx context.Context, pageURL string) (string, error) {
	target := pageURL
	if f.proxyURL != "" {
		target = f.proxyTarget(pageURL)
	}

	if err := f.limiter.wait(ctx, pageURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error ignored intentionally

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", err
	}

	f.logger.DebugContext(ctx, "fetched page", "url", pageURL, "bytes", len(body), "proxied", f.proxyURL != "")
	return string(body), nil
}

// proxyTarget wraps a page URL in a render-proxy request.
func (f *Fetcher) proxyTarget(pageURL string) string {
	q := url.Values{}
	q.Set("api_key", f.proxyKey)
	q.Set("url", pageURL)
	q.Set("render", "true")
	return f.proxyURL + "?" + q.Encode()
}
