// Package server exposes the dashboard's HTTP API: influencer CRUD,
// profile resolution endpoints, and dashboard aggregates.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rehan959/info-tracker-sub000/cache"
	"github.com/Rehan959/info-tracker-sub000/classify"
	"github.com/Rehan959/info-tracker-sub000/internal/auth"
	"github.com/Rehan959/info-tracker-sub000/internal/store"
	"github.com/Rehan959/info-tracker-sub000/resolve"
)

// ProfileResolver is the slice of the resolution engine the server uses.
type ProfileResolver interface {
	Resolve(ctx context.Context, input string) resolve.Result
	ResolveRef(ctx context.Context, ref classify.Ref) resolve.Result
	ResolveAll(ctx context.Context, refs []classify.Ref) map[classify.Ref]resolve.Result
}

// Server wires the HTTP API to storage and the resolution engine.
type Server struct {
	repo     *store.Repo
	resolver ProfileResolver
	cache    *cache.ResolutionCache
	tokens   auth.TokenService
	users    *auth.Repo
	logger   *slog.Logger
}

type Option func(*Server)

// WithCache enables serving repeated resolutions from a persistent cache.
func WithCache(c *cache.ResolutionCache) Option {
	return func(s *Server) { s.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(repo *store.Repo, users *auth.Repo, tokens auth.TokenService, resolver ProfileResolver, opts ...Option) *Server {
	s := &Server{
		repo:     repo,
		resolver: resolver,
		tokens:   tokens,
		users:    users,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth.NewHandler(s.users, s.tokens).RegisterRoutes(r.Group("/api/auth"))

	api := r.Group("/api", auth.Middleware(s.tokens))
	{
		api.GET("/dashboard", s.dashboard)

		inf := api.Group("/influencers")
		inf.POST("", s.createInfluencer)
		inf.GET("", s.listInfluencers)
		inf.GET("/:id", s.getInfluencer)
		inf.PATCH("/:id", s.updateInfluencer)
		inf.DELETE("/:id", s.deleteInfluencer)
		inf.POST("/fetch-profile", s.fetchProfile)
		inf.POST("/:id/refresh", s.refreshInfluencer)
		inf.POST("/refresh", s.refreshAll)
	}
	return r
}

// resolveCached serves a resolution from the cache when possible and
// stores fresh terminal results. AllSourcesFailed is not cached so a
// transient outage does not pin a failure for the whole TTL.
func (s *Server) resolveCached(ctx context.Context, ref classify.Ref) resolve.Result {
	if s.cache != nil {
		if entry, ok := s.cache.Get(ctx, ref); ok {
			s.logger.DebugContext(ctx, "resolution cache hit",
				"platform", ref.Platform, "username", ref.Username)
			return resolve.Result{
				Ref:      ref,
				Outcome:  entry.Outcome,
				Profile:  entry.Profile,
				Degraded: entry.Degraded,
			}
		}
	}

	res := s.resolver.ResolveRef(ctx, ref)
	if s.cache != nil && (res.Outcome == resolve.Success || res.Outcome == resolve.NotFound) {
		s.cache.Set(ctx, ref, &cache.Entry{
			Outcome:  res.Outcome,
			Profile:  res.Profile,
			Degraded: res.Degraded,
		})
	}
	return res
}
