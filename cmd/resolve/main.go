// Command resolve fetches a social profile summary from a URL or a
// platform:username token and prints it as JSON.
//
// Usage:
//
//	resolve https://instagram.com/nasa
//	resolve youtube:@MrBeast
//	resolve -bulk instagram:nasa twitter:nasa tiktok:@khaby.lame
//
// Provider credentials come from the environment (RAPIDAPI_KEY,
// YOUTUBE_API_KEY, and per-platform *_API_KEY overrides); without them
// resolution falls back to scraping.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Rehan959/info-tracker-sub000/cache"
	"github.com/Rehan959/info-tracker-sub000/classify"
	"github.com/Rehan959/info-tracker-sub000/internal/config"
	"github.com/Rehan959/info-tracker-sub000/resolve"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	bulk := flag.Bool("bulk", false, "resolve all arguments concurrently")
	timeout := flag.Duration("timeout", 15*time.Second, "per-resolution timeout")
	concurrency := flag.Int("concurrency", 4, "max in-flight resolutions in bulk mode")
	noCache := flag.Bool("no-cache", false, "disable the local resolution cache")
	cacheTTL := flag.Duration("cache-ttl", 6*time.Hour, "resolution cache time-to-live")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: resolve [options] <url-or-token> [more ...]")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nSupported platforms: Instagram, Twitter/X, YouTube, TikTok, LinkedIn")
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Credentials and the render proxy come from the same environment
	// variables the server reads.
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := []resolve.Option{
		resolve.WithLogger(logger),
		resolve.WithTimeout(*timeout),
		resolve.WithConcurrency(*concurrency),
		resolve.WithCredentials(resolve.Credentials{
			Instagram: cfg.Credentials.Instagram,
			Twitter:   cfg.Credentials.Twitter,
			YouTube:   cfg.Credentials.YouTube,
			TikTok:    cfg.Credentials.TikTok,
			LinkedIn:  cfg.Credentials.LinkedIn,
		}),
	}
	if cfg.RenderProxy.Endpoint != "" {
		opts = append(opts, resolve.WithRenderProxy(cfg.RenderProxy.Endpoint, cfg.RenderProxy.Key))
	}
	resolver := resolve.New(opts...)

	var resCache *cache.ResolutionCache
	if !*noCache {
		resCache, err = cache.New(*cacheTTL)
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		} else {
			defer func() {
				if err := resCache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
			}()
		}
	}

	ctx := context.Background()

	if *bulk {
		refs := make([]classify.Ref, 0, flag.NArg())
		for _, arg := range flag.Args() {
			ref, ok := classify.Classify(arg)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: unrecognized input %q\n", arg)
				os.Exit(1)
			}
			refs = append(refs, ref)
		}
		results := resolver.ResolveAll(ctx, refs)
		out := make([]resolve.Result, 0, len(refs))
		for _, ref := range refs {
			out = append(out, results[ref])
		}
		if err := outputJSON(out); err != nil {
			fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	result := resolveOne(ctx, resolver, resCache, flag.Arg(0), logger)
	if err := outputJSON(result); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}
	if result.Outcome != resolve.Success {
		os.Exit(1)
	}
}

func resolveOne(ctx context.Context, resolver *resolve.Resolver, resCache *cache.ResolutionCache, input string, logger *slog.Logger) resolve.Result {
	ref, ok := classify.Classify(input)
	if !ok {
		return resolve.Result{Outcome: resolve.UnsupportedPlatform}
	}
	if resCache != nil {
		if entry, found := resCache.Get(ctx, ref); found {
			logger.Debug("cache hit", "platform", ref.Platform, "username", ref.Username)
			return resolve.Result{Ref: ref, Outcome: entry.Outcome, Profile: entry.Profile, Degraded: entry.Degraded}
		}
	}
	result := resolver.ResolveRef(ctx, ref)
	if resCache != nil && (result.Outcome == resolve.Success || result.Outcome == resolve.NotFound) {
		resCache.Set(ctx, ref, &cache.Entry{Outcome: result.Outcome, Profile: result.Profile, Degraded: result.Degraded})
	}
	return result
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
