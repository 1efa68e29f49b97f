// Package cache persists resolution results across process restarts so
// that repeated lookups of the same profile do not hammer upstream
// sources. The engine itself stays stateless; callers decide when a
// cached entry is fresh enough to serve.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codeGROOVE-dev/bdcache"
	"github.com/codeGROOVE-dev/bdcache/persist/localfs"

	"github.com/Rehan959/info-tracker-sub000/classify"
	"github.com/Rehan959/info-tracker-sub000/profile"
	"github.com/Rehan959/info-tracker-sub000/resolve"
)

// Entry is one cached resolution result.
type Entry struct {
	Outcome  resolve.Outcome
	Profile  *profile.Profile
	Degraded bool
}

// ResolutionCache stores resolution results keyed by profile ref, with
// disk persistence.
type ResolutionCache struct {
	cache *bdcache.Cache[string, *Entry]
	ttl   time.Duration
}

// New creates a cache with disk persistence under the user cache
// directory. ttl is the default time-to-live for entries.
func New(ttl time.Duration) (*ResolutionCache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return NewWithPath(ttl, filepath.Join(cacheDir, "info-tracker"))
}

// NewWithPath creates a cache with disk persistence at the given path.
func NewWithPath(ttl time.Duration, cachePath string) (*ResolutionCache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	persist, err := localfs.New[string, *Entry]("info-tracker", cachePath)
	if err != nil {
		return nil, fmt.Errorf("creating persistence layer: %w", err)
	}

	c, err := bdcache.New[string, *Entry](
		context.Background(),
		bdcache.WithPersistence(persist),
		bdcache.WithDefaultTTL(ttl),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &ResolutionCache{cache: c, ttl: ttl}, nil
}

// Get returns the cached entry for a ref, if present and unexpired.
func (c *ResolutionCache) Get(ctx context.Context, ref classify.Ref) (*Entry, bool) {
	entry, found, err := c.cache.Get(ctx, refToKey(ref))
	if err != nil || !found {
		return nil, false
	}
	return entry, true
}

// Set stores a resolution result. Cache write failures are ignored;
// a missed write only costs a future re-resolution.
func (c *ResolutionCache) Set(ctx context.Context, ref classify.Ref, entry *Entry) {
	_ = c.cache.Set(ctx, refToKey(ref), entry, c.ttl)
}

// Close flushes and closes the cache.
func (c *ResolutionCache) Close() error {
	return c.cache.Close()
}

// refToKey hashes a ref into a filesystem-safe, uniform-length key.
func refToKey(ref classify.Ref) string {
	hash := sha256.Sum256([]byte(string(ref.Platform) + ":" + ref.Username))
	return hex.EncodeToString(hash[:])
}
