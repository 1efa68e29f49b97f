package tiktok

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Rehan959/info-tracker-sub000/fetch"
	"github.com/Rehan959/info-tracker-sub000/profile"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("unique_id"); got != "khaby.lame" {
			t.Errorf("unique_id = %q, want khaby.lame", got)
		}
		_, _ = w.Write([]byte(`{"data": {
			"user": {
				"nickname": "Khabane lame",
				"signature": "Se vuoi ridere sei nel posto giusto",
				"avatarThumb": "https://p16.example/khaby.jpg",
				"verified": true,
				"privateAccount": false
			},
			"stats": {"followerCount": 162000000, "followingCount": 78, "videoCount": 1200}
		}}`))
	}))
	defer srv.Close()

	c := New(WithAPIKey("k"), WithBaseURL(srv.URL))
	got, err := c.Fetch(context.Background(), "khaby.lame")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	want := &profile.Profile{
		Name:           "Khabane lame",
		Username:       "khaby.lame",
		Platform:       profile.TikTok,
		Followers:      162_000_000,
		Following:      78,
		Posts:          1_200,
		Bio:            "Se vuoi ridere sei nel posto giusto",
		ProfileURL:     "https://www.tiktok.com/@khaby.lame",
		IsVerified:     true,
		ProfilePicture: "https://p16.example/khaby.jpg",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"msg": "rate limited"}`))
	}))
	defer srv.Close()

	c := New(WithAPIKey("k"), WithBaseURL(srv.URL))
	if _, err := c.Fetch(context.Background(), "khaby.lame"); !errors.Is(err, profile.ErrMalformedPayload) {
		t.Errorf("Fetch() error = %v, want ErrMalformedPayload", err)
	}
}

func TestFetchClampsNegativeCounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": {
			"user": {"nickname": "Glitchy"},
			"stats": {"followerCount": -5, "followingCount": -1, "videoCount": -7}
		}}`))
	}))
	defer srv.Close()

	c := New(WithAPIKey("k"), WithBaseURL(srv.URL))
	got, err := c.Fetch(context.Background(), "glitchy")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got.Followers != 0 || got.Following != 0 || got.Posts != 0 {
		t.Errorf("Fetch() counts = (%d, %d, %d), want all clamped to 0",
			got.Followers, got.Following, got.Posts)
	}
}

func TestFetchNoCredential(t *testing.T) {
	c := New()
	if _, err := c.Fetch(context.Background(), "khaby.lame"); !errors.Is(err, profile.ErrNoCredential) {
		t.Errorf("Fetch() error = %v, want ErrNoCredential", err)
	}
}

func TestScrapeFollowers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<h2 data-e2e="followers-count">162.1M Followers</h2>`))
	}))
	defer srv.Close()

	f := fetch.New(fetch.WithRenderProxy(srv.URL, "k"), fetch.WithMinDelay(0))
	c := New(WithFetcher(f))

	got, ok := c.ScrapeFollowers(context.Background(), "khaby.lame")
	if !ok || got != 162_100_000 {
		t.Errorf("ScrapeFollowers() = (%d, %v), want (162100000, true)", got, ok)
	}
}
