// Package youtube fetches YouTube channel profile data.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Rehan959/info-tracker-sub000/fetch"
	"github.com/Rehan959/info-tracker-sub000/followers"
	"github.com/Rehan959/info-tracker-sub000/htmlutil"
	"github.com/Rehan959/info-tracker-sub000/profile"
)

const platform = profile.YouTube

// Client handles YouTube requests.
type Client struct {
	httpClient *http.Client
	fetcher    *fetch.Fetcher
	logger     *slog.Logger
	apiKey     string
	baseURL    string
}

// Option configures a Client.
type Option func(*config)

type config struct {
	httpClient *http.Client
	fetcher    *fetch.Fetcher
	logger     *slog.Logger
	apiKey     string
	baseURL    string
}

// WithAPIKey sets the YouTube Data API credential.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithFetcher sets the fetcher used for scrape fallbacks.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(c *config) { c.fetcher = f }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithBaseURL overrides the provider endpoint base URL.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// New creates a YouTube client.
func New(opts ...Option) *Client {
	cfg := &config{
		logger:  slog.Default(),
		baseURL: "https://www.googleapis.com/youtube/v3",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.fetcher == nil {
		cfg.fetcher = fetch.New(fetch.WithLogger(cfg.logger))
	}

	return &Client{
		httpClient: cfg.httpClient,
		fetcher:    cfg.fetcher,
		logger:     cfg.logger,
		apiKey:     cfg.apiKey,
		baseURL:    cfg.baseURL,
	}
}

// channelList mirrors the Data API v3 channels.list response. Statistics
// counters arrive as strings.
type channelList struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Fetch retrieves a YouTube channel profile via the Data API v3, looking the
// channel up by handle.
func (c *Client) Fetch(ctx context.Context, username string) (*profile.Profile, error) {
	if c.apiKey == "" {
		return nil, profile.ErrNoCredential
	}

	q := url.Values{}
	q.Set("part", "snippet,statistics")
	q.Set("forHandle", username)
	q.Set("key", c.apiKey)
	endpoint := c.baseURL + "/channels?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "youtube provider request failed", "username", username, "error", err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error ignored intentionally

	if resp.StatusCode != http.StatusOK {
		c.logger.DebugContext(ctx, "youtube provider status error", "username", username, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %d", profile.ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var list channelList
	if err := json.Unmarshal(body, &list); err != nil {
		c.logger.DebugContext(ctx, "youtube provider payload malformed", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %v", profile.ErrMalformedPayload, err)
	}
	// The API answers 200 with an empty item list for unknown handles.
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("%w: youtube channel @%s", profile.ErrProfileNotFound, username)
	}

	item := list.Items[0]
	name := item.Snippet.Title
	if name == "" {
		name = username
	}

	return &profile.Profile{
		Name:           name,
		Username:       username,
		Platform:       platform,
		Followers:      followers.NormalizeString(item.Statistics.SubscriberCount),
		Posts:          followers.NormalizeString(item.Statistics.VideoCount),
		Bio:            item.Snippet.Description,
		ProfileURL:     profile.CanonicalURL(platform, username),
		ProfilePicture: item.Snippet.Thumbnails.Default.URL,
	}, nil
}

// ScrapeFollowers recovers a subscriber count from the public channel page,
// trying the mobile site before the desktop one.
func (c *Client) ScrapeFollowers(ctx context.Context, username string) (int, bool) {
	urls := []string{
		fmt.Sprintf("https://m.youtube.com/@%s", username),
		fmt.Sprintf("https://www.youtube.com/@%s", username),
	}

	for _, u := range urls {
		html, err := c.fetcher.HTML(ctx, u)
		if err != nil {
			c.logger.DebugContext(ctx, "youtube scrape fetch failed", "url", u, "error", err)
			continue
		}
		if n, ok := htmlutil.Followers(html); ok {
			return n, true
		}
	}
	return 0, false
}
