// Package instagram fetches Instagram profile data.
package instagram

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

const platform = profile.Instagram

const apiHost = "instagram-basic-and-badge-data.p.rapidapi.com"

// Client handles Instagram requests.
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

// WithAPIKey sets the provider API credential.
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

// New creates an Instagram client.
func New(opts ...Option) *Client {
	cfg := &config{
		logger:  slog.Default(),
		baseURL: "https://" + apiHost,
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

type userPayload struct {
	User *struct {
		FullName       string `json:"full_name"`
		Biography      string `json:"biography"`
		ProfilePicURL  string `json:"profile_pic_url"`
		FollowerCount  int    `json:"follower_count"`
		FollowingCount int    `json:"following_count"`
		MediaCount     int    `json:"media_count"`
		IsPrivate      bool   `json:"is_private"`
		IsVerified     bool   `json:"is_verified"`
	} `json:"user"`
}

// Fetch retrieves an Instagram profile from the structured provider endpoint.
// It does not retry and it does not fall back to scraping; tier policy lives
// in the orchestrator.
func (c *Client) Fetch(ctx context.Context, username string) (*profile.Profile, error) {
	if c.apiKey == "" {
		return nil, profile.ErrNoCredential
	}

	endpoint := fmt.Sprintf("%s/ig/user/?ig=%s", c.baseURL, url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "instagram provider request failed", "username", username, "error", err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error ignored intentionally

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: instagram user %s", profile.ErrProfileNotFound, username)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.DebugContext(ctx, "instagram provider status error", "username", username, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %d", profile.ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var payload userPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.User == nil {
		c.logger.DebugContext(ctx, "instagram provider payload malformed", "username", username, "error", err)
		return nil, fmt.Errorf("%w: no user object", profile.ErrMalformedPayload)
	}

	u := payload.User
	name := u.FullName
	if name == "" {
		name = username
	}

	return &profile.Profile{
		Name:           name,
		Username:       username,
		Platform:       platform,
		Followers:      followers.Normalize(u.FollowerCount),
		Following:      followers.Normalize(u.FollowingCount),
		Posts:          followers.Normalize(u.MediaCount),
		Bio:            u.Biography,
		ProfileURL:     profile.CanonicalURL(platform, username),
		IsPrivate:      u.IsPrivate,
		IsVerified:     u.IsVerified,
		ProfilePicture: u.ProfilePicURL,
	}, nil
}

// ScrapeFollowers recovers a follower count from the public profile page.
// The mobile site is tried first for its simpler markup, then the desktop
// site. Both failing yields (0, false).
func (c *Client) ScrapeFollowers(ctx context.Context, username string) (int, bool) {
	urls := []string{
		fmt.Sprintf("https://m.instagram.com/%s/", username),
		fmt.Sprintf("https://www.instagram.com/%s/", username),
	}

	for _, u := range urls {
		html, err := c.fetcher.HTML(ctx, u)
		if err != nil {
			c.logger.DebugContext(ctx, "instagram scrape fetch failed", "url", u, "error", err)
			continue
		}
		if n, ok := htmlutil.Followers(html); ok {
			return n, true
		}
	}
	return 0, false
}
