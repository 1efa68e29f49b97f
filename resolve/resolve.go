// Package resolve turns profile URLs and platform:username tokens into
// resolved profiles, falling back from structured provider APIs to HTML
// scraping when a tier fails.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/Rehan959/info-tracker-sub000/classify"
	"github.com/Rehan959/info-tracker-sub000/fetch"
	"github.com/Rehan959/info-tracker-sub000/instagram"
	"github.com/Rehan959/info-tracker-sub000/linkedin"
	"github.com/Rehan959/info-tracker-sub000/profile"
	"github.com/Rehan959/info-tracker-sub000/tiktok"
	"github.com/Rehan959/info-tracker-sub000/twitter"
	"github.com/Rehan959/info-tracker-sub000/youtube"
)

// Outcome classifies how a resolution ended.
type Outcome string

const (
	// Success means a profile was assembled, possibly degraded.
	Success Outcome = "SUCCESS"
	// NotFound means the provider authoritatively reported no such profile.
	NotFound Outcome = "NOT_FOUND"
	// UnsupportedPlatform means the input matched no known platform.
	UnsupportedPlatform Outcome = "UNSUPPORTED_PLATFORM"
	// AllSourcesFailed means both the provider and scrape tiers failed.
	AllSourcesFailed Outcome = "ALL_SOURCES_FAILED"
)

// Result is the outcome of a single resolution. Profile is non-nil only
// when Outcome is Success; Degraded marks a scrape-only profile that
// carries a follower count and defaults everywhere else.
type Result struct {
	Ref      classify.Ref
	Outcome  Outcome
	Profile  *profile.Profile
	Degraded bool
}

// Provider fetches a full profile from a structured data API.
type Provider interface {
	Fetch(ctx context.Context, username string) (*profile.Profile, error)
}

// Scraper recovers a follower count from public profile HTML.
type Scraper interface {
	ScrapeFollowers(ctx context.Context, username string) (int, bool)
}

type client struct {
	provider Provider
	scraper  Scraper
}

// Credentials holds per-platform provider API keys. An empty key means
// that platform's provider tier is skipped and resolution goes straight
// to scraping.
type Credentials struct {
	Instagram string
	Twitter   string
	YouTube   string
	TikTok    string
	LinkedIn  string
}

// Resolver orchestrates tiered profile resolution across platforms.
type Resolver struct {
	clients     map[profile.Platform]client
	breakers    map[profile.Platform]*gobreaker.CircuitBreaker
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

type config struct {
	creds       Credentials
	proxyURL    string
	proxyKey    string
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
	clients     map[profile.Platform]client
}

// Option configures the resolver.
type Option func(*config)

// WithCredentials sets the per-platform provider API keys.
func WithCredentials(creds Credentials) Option {
	return func(c *config) { c.creds = creds }
}

// WithRenderProxy routes scrape fetches through a rendering proxy.
func WithRenderProxy(endpoint, key string) Option {
	return func(c *config) {
		c.proxyURL = endpoint
		c.proxyKey = key
	}
}

// WithTimeout bounds each single resolution, both tiers included.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithConcurrency caps the number of in-flight resolutions in bulk mode.
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithClient replaces a platform's adapters, for testing. A nil provider
// skips the provider tier for that platform.
func WithClient(p profile.Platform, provider Provider, scraper Scraper) Option {
	return func(c *config) {
		if c.clients == nil {
			c.clients = make(map[profile.Platform]client)
		}
		c.clients[p] = client{provider: provider, scraper: scraper}
	}
}

// New creates a resolver with one adapter pair per supported platform.
func New(opts ...Option) *Resolver {
	cfg := config{
		timeout:     15 * time.Second,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Resolver{
		clients:     make(map[profile.Platform]client, len(profile.All)),
		breakers:    make(map[profile.Platform]*gobreaker.CircuitBreaker, len(profile.All)),
		timeout:     cfg.timeout,
		concurrency: cfg.concurrency,
		logger:      cfg.logger,
	}

	fetchOpts := []fetch.Option{fetch.WithLogger(cfg.logger)}
	if cfg.proxyURL != "" {
		fetchOpts = append(fetchOpts, fetch.WithRenderProxy(cfg.proxyURL, cfg.proxyKey))
	}
	fetcher := fetch.New(fetchOpts...)

	ig := instagram.New(instagram.WithAPIKey(cfg.creds.Instagram), instagram.WithFetcher(fetcher), instagram.WithLogger(cfg.logger))
	tw := twitter.New(twitter.WithAPIKey(cfg.creds.Twitter), twitter.WithFetcher(fetcher), twitter.WithLogger(cfg.logger))
	yt := youtube.New(youtube.WithAPIKey(cfg.creds.YouTube), youtube.WithFetcher(fetcher), youtube.WithLogger(cfg.logger))
	tt := tiktok.New(tiktok.WithAPIKey(cfg.creds.TikTok), tiktok.WithFetcher(fetcher), tiktok.WithLogger(cfg.logger))
	li := linkedin.New(linkedin.WithAPIKey(cfg.creds.LinkedIn), linkedin.WithFetcher(fetcher), linkedin.WithLogger(cfg.logger))

	r.clients[profile.Instagram] = client{provider: providerIfKeyed(ig, cfg.creds.Instagram), scraper: ig}
	r.clients[profile.TwitterX] = client{provider: providerIfKeyed(tw, cfg.creds.Twitter), scraper: tw}
	r.clients[profile.YouTube] = client{provider: providerIfKeyed(yt, cfg.creds.YouTube), scraper: yt}
	r.clients[profile.TikTok] = client{provider: providerIfKeyed(tt, cfg.creds.TikTok), scraper: tt}
	r.clients[profile.LinkedIn] = client{provider: providerIfKeyed(li, cfg.creds.LinkedIn), scraper: li}

	for p, cl := range cfg.clients {
		r.clients[p] = cl
	}

	for _, p := range profile.All {
		r.breakers[p] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    string(p),
			Timeout: 30 * time.Second,
			// An authoritative not-found is a healthy answer from the
			// provider, not a reason to open the circuit.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, profile.ErrProfileNotFound)
			},
		})
	}
	return r
}

func providerIfKeyed(p Provider, key string) Provider {
	if key == "" {
		return nil
	}
	return p
}

// Resolve classifies the input and resolves the resulting ref.
func (r *Resolver) Resolve(ctx context.Context, input string) Result {
	ref, ok := classify.Classify(input)
	if !ok {
		r.logger.DebugContext(ctx, "unsupported platform", "input", input)
		recordOutcome("", UnsupportedPlatform)
		return Result{Outcome: UnsupportedPlatform}
	}
	return r.ResolveRef(ctx, ref)
}

// ResolveRef runs the provider tier, then the scrape tier, for one ref.
func (r *Resolver) ResolveRef(ctx context.Context, ref classify.Ref) Result {
	cl, ok := r.clients[ref.Platform]
	if !ok {
		recordOutcome(ref.Platform, UnsupportedPlatform)
		return Result{Ref: ref, Outcome: UnsupportedPlatform}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if cl.provider != nil {
		p, err := r.fetchViaBreaker(ctx, ref, cl.provider)
		switch {
		case err == nil:
			recordOutcome(ref.Platform, Success)
			return Result{Ref: ref, Outcome: Success, Profile: p}
		case errors.Is(err, profile.ErrProfileNotFound):
			recordOutcome(ref.Platform, NotFound)
			return Result{Ref: ref, Outcome: NotFound}
		default:
			recordProviderFailure(ref.Platform)
			r.logger.DebugContext(ctx, "provider tier failed, falling back to scrape",
				"platform", ref.Platform, "username", ref.Username, "error", err)
		}
	}

	if count, ok := cl.scraper.ScrapeFollowers(ctx, ref.Username); ok {
		recordOutcome(ref.Platform, Success)
		recordScrapeFallback(ref.Platform)
		p := &profile.Profile{
			Name:       ref.Username,
			Username:   ref.Username,
			Platform:   ref.Platform,
			Followers:  count,
			ProfileURL: profile.CanonicalURL(ref.Platform, ref.Username),
		}
		return Result{Ref: ref, Outcome: Success, Profile: p, Degraded: true}
	}

	recordOutcome(ref.Platform, AllSourcesFailed)
	return Result{Ref: ref, Outcome: AllSourcesFailed}
}

func (r *Resolver) fetchViaBreaker(ctx context.Context, ref classify.Ref, p Provider) (*profile.Profile, error) {
	br := r.breakers[ref.Platform]
	if br == nil {
		return p.Fetch(ctx, ref.Username)
	}
	out, err := br.Execute(func() (any, error) {
		return p.Fetch(ctx, ref.Username)
	})
	if err != nil {
		return nil, err
	}
	return out.(*profile.Profile), nil
}

// ResolveAll resolves refs with bounded concurrency. Results are keyed
// by ref; completion order carries no meaning. One slow or failed ref
// does not cancel the others.
func (r *Resolver) ResolveAll(ctx context.Context, refs []classify.Ref) map[classify.Ref]Result {
	results := make(map[classify.Ref]Result, len(refs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, ref := range refs {
		g.Go(func() error {
			res := r.ResolveRef(ctx, ref)
			mu.Lock()
			results[ref] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
