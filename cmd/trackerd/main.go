// Command trackerd serves the influencer dashboard API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rehan959/info-tracker-sub000/cache"
	"github.com/Rehan959/info-tracker-sub000/internal/auth"
	"github.com/Rehan959/info-tracker-sub000/internal/config"
	"github.com/Rehan959/info-tracker-sub000/internal/seed"
	"github.com/Rehan959/info-tracker-sub000/internal/server"
	"github.com/Rehan959/info-tracker-sub000/internal/store"
	"github.com/Rehan959/info-tracker-sub000/resolve"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	debug := flag.Bool("debug", false, "enable debug logging")
	demo := flag.Bool("seed", false, "seed demo data on startup")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := run(*configPath, *demo, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, demo bool, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("jwt secret is required: set server.jwt_secret or JWT_SECRET")
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repo := store.NewRepo(db)
	users := auth.NewRepo(db)
	tokens := auth.TokenService{
		Secret:   []byte(cfg.Server.JWTSecret),
		Issuer:   "info-tracker",
		Duration: 24 * time.Hour,
	}

	ctx := context.Background()
	if demo {
		if err := seed.Run(ctx, users, repo); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("demo data seeded", "email", seed.DemoEmail)
	}

	resolverOpts := []resolve.Option{
		resolve.WithLogger(logger),
		resolve.WithTimeout(cfg.Resolver.Timeout),
		resolve.WithConcurrency(cfg.Resolver.Concurrency),
		resolve.WithCredentials(resolve.Credentials{
			Instagram: cfg.Credentials.Instagram,
			Twitter:   cfg.Credentials.Twitter,
			YouTube:   cfg.Credentials.YouTube,
			TikTok:    cfg.Credentials.TikTok,
			LinkedIn:  cfg.Credentials.LinkedIn,
		}),
	}
	if cfg.RenderProxy.Endpoint != "" {
		resolverOpts = append(resolverOpts, resolve.WithRenderProxy(cfg.RenderProxy.Endpoint, cfg.RenderProxy.Key))
	}
	resolver := resolve.New(resolverOpts...)

	serverOpts := []server.Option{server.WithLogger(logger)}
	resCache, err := cache.New(cfg.Resolver.CacheTTL)
	if err != nil {
		logger.Warn("resolution cache unavailable, continuing without it", "error", err)
	} else {
		defer func() { _ = resCache.Close() }()
		serverOpts = append(serverOpts, server.WithCache(resCache))
	}

	srv := server.New(repo, users, tokens, resolver, serverOpts...)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
