// Package linkedin fetches public LinkedIn profile data.
package linkedin

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

const (
	platform = profile.LinkedIn
	apiHost  = "linkedin-profile-data.p.rapidapi.com"

	maxBodySize = 1 << 20
)

// Client fetches LinkedIn profiles.
type Client struct {
	httpClient *http.Client
	fetcher    *fetch.Fetcher
	logger     *slog.Logger
	apiKey     string
	baseURL    string
}

type config struct {
	httpClient *http.Client
	fetcher    *fetch.Fetcher
	logger     *slog.Logger
	apiKey     string
	baseURL    string
}

// Option configures the client.
type Option func(*config)

// WithAPIKey sets the RapidAPI key used for structured lookups.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithFetcher sets the HTML fetcher used for scrape fallbacks.
func WithFetcher(f *fetch.Fetcher) Option {
	return func(c *config) { c.fetcher = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithBaseURL overrides the API endpoint, for testing.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// New creates a LinkedIn client.
func New(opts ...Option) *Client {
	cfg := config{
		logger:  slog.Default(),
		baseURL: "https://" + apiHost,
	}
	for _, opt := range opts {
		opt(&cfg)
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

type profilePayload struct {
	FullName          string `json:"full_name"`
	Headline          string `json:"headline"`
	Location          string `json:"location"`
	ProfilePictureURL string `json:"profile_picture_url"`
	FollowersCount    int    `json:"followers_count"`
	ConnectionsCount  int    `json:"connections_count"`
}

// Fetch retrieves a profile through the structured API.
func (c *Client) Fetch(ctx context.Context, username string) (*profile.Profile, error) {
	if c.apiKey == "" {
		return nil, profile.ErrNoCredential
	}

	profileURL := profile.CanonicalURL(platform, username)
	endpoint := c.baseURL + "/?linkedin_url=" + url.QueryEscape(profileURL)
	c.logger.DebugContext(ctx, "fetching linkedin profile", "username", username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error ignored intentionally

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, username)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.DebugContext(ctx, "linkedin api error", "status", resp.StatusCode, "username", username)
		return nil, fmt.Errorf("%w: %d", profile.ErrBadStatus, resp.StatusCode)
	}

	var payload profilePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", profile.ErrMalformedPayload, err)
	}
	if payload.FullName == "" && payload.Headline == "" && payload.FollowersCount == 0 {
		return nil, fmt.Errorf("%w: empty profile", profile.ErrMalformedPayload)
	}

	name := payload.FullName
	if name == "" {
		name = username
	}

	p := &profile.Profile{
		Name:           name,
		Username:       username,
		Platform:       platform,
		Followers:      followers.Normalize(payload.FollowersCount),
		Bio:            payload.Headline,
		ProfileURL:     profileURL,
		ProfilePicture: payload.ProfilePictureURL,
	}
	c.logger.InfoContext(ctx, "fetched linkedin profile", "username", username, "followers", p.Followers)
	return p, nil
}

// ScrapeFollowers extracts a follower count from the public profile page.
func (c *Client) ScrapeFollowers(ctx context.Context, username string) (int, bool) {
	pages := []string{
		"https://www.linkedin.com/in/" + username + "/",
		"https://linkedin.com/in/" + username,
	}
	for _, page := range pages {
		html, err := c.fetcher.HTML(ctx, page)
		if err != nil {
			c.logger.DebugContext(ctx, "linkedin scrape failed", "url", page, "error", err)
			continue
		}
		if count, ok := htmlutil.Followers(html); ok {
			return count, true
		}
	}
	return 0, false
}
