// Package twitter fetches Twitter/X profile data.
package twitter

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

const platform = profile.TwitterX

const apiHost = "twitter154.p.rapidapi.com"

// Client handles Twitter/X requests.
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

// New creates a Twitter/X client.
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

type userDetails struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	ProfileImageURL string `json:"profile_image_url"`
	FollowersCount  int    `json:"followers_count"`
	FollowingCount  int    `json:"following_count"`
	TweetsCount     int    `json:"tweets_count"`
	Protected       bool   `json:"protected"`
	Verified        bool   `json:"verified"`
}

// Fetch retrieves a Twitter/X profile from the structured provider endpoint.
func (c *Client) Fetch(ctx context.Context, username string) (*profile.Profile, error) {
	if c.apiKey == "" {
		return nil, profile.ErrNoCredential
	}

	endpoint := fmt.Sprintf("%s/user/details?username=%s", c.baseURL, url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "twitter provider request failed", "username", username, "error", err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error ignored intentionally

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: twitter user %s", profile.ErrProfileNotFound, username)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.DebugContext(ctx, "twitter provider status error", "username", username, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %d", profile.ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var d userDetails
	if err := json.Unmarshal(body, &d); err != nil {
		c.logger.DebugContext(ctx, "twitter provider payload malformed", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %v", profile.ErrMalformedPayload, err)
	}
	if d.Name == "" && d.FollowersCount == 0 && d.Description == "" {
		c.logger.DebugContext(ctx, "twitter provider payload malformed", "username", username)
		return nil, fmt.Errorf("%w: empty user details", profile.ErrMalformedPayload)
	}

	name := d.Name
	if name == "" {
		name = username
	}

	return &profile.Profile{
		Name:           name,
		Username:       username,
		Platform:       platform,
		Followers:      followers.Normalize(d.FollowersCount),
		Following:      followers.Normalize(d.FollowingCount),
		Posts:          followers.Normalize(d.TweetsCount),
		Bio:            d.Description,
		ProfileURL:     profile.CanonicalURL(platform, username),
		IsPrivate:      d.Protected,
		IsVerified:     d.Verified,
		ProfilePicture: d.ProfileImageURL,
	}, nil
}

// ScrapeFollowers recovers a follower count from the public profile page,
// trying the mobile site before the desktop one.
func (c *Client) ScrapeFollowers(ctx context.Context, username string) (int, bool) {
	urls := []string{
		fmt.Sprintf("https://mobile.twitter.com/%s", username),
		fmt.Sprintf("https://x.com/%s", username),
	}

	for _, u := range urls {
		html, err := c.fetcher.HTML(ctx, u)
		if err != nil {
			c.logger.DebugContext(ctx, "twitter scrape fetch failed", "url", u, "error", err)
			continue
		}
		if n, ok := htmlutil.Followers(html); ok {
			return n, true
		}
	}
	return 0, false
}
