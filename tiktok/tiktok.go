// Package tiktok fetches TikTok profile data.
package tiktok

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

const platform = profile.TikTok

const apiHost = "tiktok-video-no-watermark2.p.rapidapi.com"

// Client handles TikTok requests.
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

// New creates a TikTok client.
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

type userInfo struct {
	Data *struct {
		User struct {
			Nickname       string `json:"nickname"`
			Signature      string `json:"signature"`
			AvatarThumb    string `json:"avatarThumb"`
			Verified       bool   `json:"verified"`
			PrivateAccount bool   `json:"privateAccount"`
		} `json:"user"`
		Stats struct {
			FollowerCount  int `json:"followerCount"`
			FollowingCount int `json:"followingCount"`
			VideoCount     int `json:"videoCount"`
		} `json:"stats"`
	} `json:"data"`
}

// Fetch retrieves a TikTok profile from the structured provider endpoint.
func (c *Client) Fetch(ctx context.Context, username string) (*profile.Profile, error) {
	if c.apiKey == "" {
		return nil, profile.ErrNoCredential
	}

	endpoint := fmt.Sprintf("%s/user/info?unique_id=%s", c.baseURL, url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "tiktok provider request failed", "username", username, "error", err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error ignored intentionally

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: tiktok user @%s", profile.ErrProfileNotFound, username)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.DebugContext(ctx, "tiktok provider status error", "username", username, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %d", profile.ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil || info.Data == nil {
		c.logger.DebugContext(ctx, "tiktok provider payload malformed", "username", username, "error", err)
		return nil, fmt.Errorf("%w: no data object", profile.ErrMalformedPayload)
	}

	name := info.Data.User.Nickname
	if name == "" {
		name = username
	}

	return &profile.Profile{
		Name:           name,
		Username:       username,
		Platform:       platform,
		Followers:      followers.Normalize(info.Data.Stats.FollowerCount),
		Following:      followers.Normalize(info.Data.Stats.FollowingCount),
		Posts:          followers.Normalize(info.Data.Stats.VideoCount),
		Bio:            info.Data.User.Signature,
		ProfileURL:     profile.CanonicalURL(platform, username),
		IsPrivate:      info.Data.User.PrivateAccount,
		IsVerified:     info.Data.User.Verified,
		ProfilePicture: info.Data.User.AvatarThumb,
	}, nil
}

// ScrapeFollowers recovers a follower count from the public profile page.
// TikTok has no lightweight variant; the second attempt forces the English
// locale, which renders counts in the markup the extractor recognizes.
func (c *Client) ScrapeFollowers(ctx context.Context, username string) (int, bool) {
	urls := []string{
		fmt.Sprintf("https://www.tiktok.com/@%s", username),
		fmt.Sprintf("https://www.tiktok.com/@%s?lang=en", username),
	}

	for _, u := range urls {
		html, err := c.fetcher.HTML(ctx, u)
		if err != nil {
			c.logger.DebugContext(ctx, "tiktok scrape fetch failed", "url", u, "error", err)
			continue
		}
		if n, ok := htmlutil.Followers(html); ok {
			return n, true
		}
	}
	return 0, false
}
