package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// domainLimiter enforces a minimum delay between requests to the same domain.
// Safe for concurrent use.
type domainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minDelay time.Duration
}

func newDomainLimiter(minDelay time.Duration) *domainLimiter {
	return &domainLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

// wait blocks until a request to the URL's domain is allowed, or the context
// is cancelled.
func (l *domainLimiter) wait(ctx context.Context, rawURL string) error {
	if l.minDelay <= 0 {
		return nil
	}

	domain := extractDomain(rawURL)
	if domain == "" {
		return nil
	}

	l.mu.Lock()
	lim, ok := l.limiters[domain]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.minDelay), 1)
		l.limiters[domain] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}

func extractDomain(rawURL string) string {
	s := strings.TrimPrefix(rawURL, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "m.")
	s = strings.TrimPrefix(s, "mobile.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}
