package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Rehan959/info-tracker-sub000/classify"
	"github.com/Rehan959/info-tracker-sub000/profile"
)

type fakeProvider struct {
	profile *profile.Profile
	err     error
	calls   atomic.Int64
}

func (f *fakeProvider) Fetch(_ context.Context, _ string) (*profile.Profile, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeScraper struct {
	count    int
	ok       bool
	delay    time.Duration
	calls    atomic.Int64
	inflight atomic.Int64
	maxSeen  atomic.Int64
}

func (f *fakeScraper) ScrapeFollowers(ctx context.Context, _ string) (int, bool) {
	f.calls.Add(1)
	cur := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		max := f.maxSeen.Load()
		if cur <= max || f.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, false
		}
	}
	if ctx.Err() != nil {
		return 0, false
	}
	return f.count, f.ok
}

func TestResolveProviderSuccess(t *testing.T) {
	want := &profile.Profile{
		Name:      "NASA",
		Username:  "nasa",
		Platform:  profile.Instagram,
		Followers: 96000000,
	}
	r := New(WithClient(profile.Instagram, &fakeProvider{profile: want}, &fakeScraper{}))

	got := r.Resolve(context.Background(), "https://instagram.com/nasa")
	if got.Outcome != Success {
		t.Fatalf("Outcome = %v, want Success", got.Outcome)
	}
	if got.Degraded {
		t.Error("Degraded = true, want false")
	}
	if diff := cmp.Diff(want, got.Profile); diff != "" {
		t.Errorf("Profile mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDegraded(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: 503", profile.ErrBadStatus)}
	scraper := &fakeScraper{count: 1200000, ok: true}
	r := New(WithClient(profile.TikTok, provider, scraper))

	got := r.Resolve(context.Background(), "tiktok:@khaby.lame")
	if got.Outcome != Success {
		t.Fatalf("Outcome = %v, want Success", got.Outcome)
	}
	if !got.Degraded {
		t.Error("Degraded = false, want true")
	}

	want := &profile.Profile{
		Name:       "khaby.lame",
		Username:   "khaby.lame",
		Platform:   profile.TikTok,
		Followers:  1200000,
		ProfileURL: "https://www.tiktok.com/@khaby.lame",
	}
	if diff := cmp.Diff(want, got.Profile); diff != "" {
		t.Errorf("Profile mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveAllSourcesFailed(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	scraper := &fakeScraper{ok: false}
	r := New(WithClient(profile.TwitterX, provider, scraper))

	got := r.Resolve(context.Background(), "https://x.com/elonmusk")
	if got.Outcome != AllSourcesFailed {
		t.Errorf("Outcome = %v, want AllSourcesFailed", got.Outcome)
	}
	if got.Profile != nil {
		t.Errorf("Profile = %+v, want nil", got.Profile)
	}
}

func TestResolveNotFound(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("%w: nobody", profile.ErrProfileNotFound)}
	scraper := &fakeScraper{count: 500, ok: true}
	r := New(WithClient(profile.Instagram, provider, scraper))

	got := r.Resolve(context.Background(), "instagram:nobody")
	if got.Outcome != NotFound {
		t.Errorf("Outcome = %v, want NotFound", got.Outcome)
	}
	if scraper.calls.Load() != 0 {
		t.Errorf("scraper called %d times after authoritative not-found", scraper.calls.Load())
	}
}

func TestResolveUnsupportedPlatform(t *testing.T) {
	r := New()
	got := r.Resolve(context.Background(), "https://myspace.com/tom")
	if got.Outcome != UnsupportedPlatform {
		t.Errorf("Outcome = %v, want UnsupportedPlatform", got.Outcome)
	}
}

func TestResolveSkipsProviderWithoutCredential(t *testing.T) {
	scraper := &fakeScraper{count: 42000, ok: true}
	r := New(WithClient(profile.YouTube, nil, scraper))

	got := r.Resolve(context.Background(), "youtube:@MrBeast")
	if got.Outcome != Success {
		t.Fatalf("Outcome = %v, want Success", got.Outcome)
	}
	if !got.Degraded {
		t.Error("Degraded = false, want true")
	}
	if scraper.calls.Load() != 1 {
		t.Errorf("scraper calls = %d, want 1", scraper.calls.Load())
	}
}

func TestResolveCancelled(t *testing.T) {
	provider := &fakeProvider{err: context.Canceled}
	scraper := &fakeScraper{count: 100, ok: true, delay: time.Second}
	r := New(WithClient(profile.Instagram, provider, scraper))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := r.Resolve(ctx, "https://instagram.com/nasa")
	if got.Outcome != AllSourcesFailed {
		t.Errorf("Outcome = %v, want AllSourcesFailed", got.Outcome)
	}
}

func TestResolveAll(t *testing.T) {
	refs := []classify.Ref{
		{Platform: profile.Instagram, Username: "nasa"},
		{Platform: profile.Instagram, Username: "natgeo"},
		{Platform: profile.TwitterX, Username: "nasa"},
		{Platform: profile.YouTube, Username: "mrbeast"},
		{Platform: profile.YouTube, Username: "veritasium"},
	}

	igProfiles := map[string]*profile.Profile{}
	for i, u := range []string{"nasa", "natgeo"} {
		igProfiles[u] = &profile.Profile{
			Name: u, Username: u, Platform: profile.Instagram, Followers: 1000 * (i + 1),
		}
	}
	igProvider := &perUserProvider{profiles: igProfiles}

	twProvider := &fakeProvider{err: errors.New("quota exceeded")}
	twScraper := &fakeScraper{count: 7000, ok: true}
	ytProvider := &fakeProvider{err: fmt.Errorf("%w: 500", profile.ErrBadStatus)}
	ytScraper := &fakeScraper{count: 9000, ok: true}

	r := New(
		WithClient(profile.Instagram, igProvider, &fakeScraper{}),
		WithClient(profile.TwitterX, twProvider, twScraper),
		WithClient(profile.YouTube, ytProvider, ytScraper),
		WithConcurrency(3),
	)

	results := r.ResolveAll(context.Background(), refs)
	if len(results) != len(refs) {
		t.Fatalf("got %d results, want %d", len(results), len(refs))
	}
	for _, ref := range refs {
		res, ok := results[ref]
		if !ok {
			t.Fatalf("missing result for %+v", ref)
		}
		if res.Outcome != Success {
			t.Errorf("%+v: Outcome = %v, want Success", ref, res.Outcome)
			continue
		}
		if res.Profile.Username != ref.Username {
			t.Errorf("%+v: profile username %q leaked from another ref", ref, res.Profile.Username)
		}
		if res.Profile.Platform != ref.Platform {
			t.Errorf("%+v: profile platform %q leaked from another ref", ref, res.Profile.Platform)
		}
	}
	if res := results[refs[2]]; !res.Degraded || res.Profile.Followers != 7000 {
		t.Errorf("twitter ref not served by scrape fallback: %+v", res)
	}
}

func TestResolveAllBoundedConcurrency(t *testing.T) {
	scraper := &fakeScraper{count: 10, ok: true, delay: 20 * time.Millisecond}
	r := New(
		WithClient(profile.Instagram, nil, scraper),
		WithConcurrency(2),
	)

	refs := make([]classify.Ref, 8)
	for i := range refs {
		refs[i] = classify.Ref{Platform: profile.Instagram, Username: fmt.Sprintf("user%d", i)}
	}
	results := r.ResolveAll(context.Background(), refs)
	if len(results) != len(refs) {
		t.Fatalf("got %d results, want %d", len(results), len(refs))
	}
	if max := scraper.maxSeen.Load(); max > 2 {
		t.Errorf("max in-flight scrapes = %d, want <= 2", max)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	scraper := &fakeScraper{count: 5, ok: true}
	r := New(WithClient(profile.LinkedIn, provider, scraper))

	ref := classify.Ref{Platform: profile.LinkedIn, Username: "someone"}
	for range 10 {
		res := r.ResolveRef(context.Background(), ref)
		if res.Outcome != Success || !res.Degraded {
			t.Fatalf("expected degraded success, got %+v", res)
		}
	}
	// The circuit trips after consecutive provider failures, so later
	// resolutions go straight to the scrape tier.
	if calls := provider.calls.Load(); calls >= 10 {
		t.Errorf("provider calls = %d, want fewer than resolutions once open", calls)
	}
}

type perUserProvider struct {
	profiles map[string]*profile.Profile
}

func (p *perUserProvider) Fetch(_ context.Context, username string) (*profile.Profile, error) {
	prof, ok := p.profiles[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, username)
	}
	return prof, nil
}
