package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Rehan959/info-tracker-sub000/classify"
	"github.com/Rehan959/info-tracker-sub000/profile"
	"github.com/Rehan959/info-tracker-sub000/resolve"
)

func TestGetSet(t *testing.T) {
	c, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	ref := classify.Ref{Platform: profile.Instagram, Username: "nasa"}

	if _, found := c.Get(ctx, ref); found {
		t.Error("Get() found = true on empty cache")
	}

	entry := &Entry{
		Outcome: resolve.Success,
		Profile: &profile.Profile{
			Name:      "NASA",
			Username:  "nasa",
			Platform:  profile.Instagram,
			Followers: 96000000,
		},
	}
	c.Set(ctx, ref, entry)

	got, found := c.Get(ctx, ref)
	if !found {
		t.Fatal("Get() found = false after Set")
	}
	if diff := cmp.Diff(entry, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestDistinctRefs(t *testing.T) {
	c, err := NewWithPath(time.Hour, t.TempDir())
	if err != nil {
		t.Fatalf("NewWithPath() error = %v", err)
	}
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	a := classify.Ref{Platform: profile.Instagram, Username: "nasa"}
	b := classify.Ref{Platform: profile.TwitterX, Username: "nasa"}
	c.Set(ctx, a, &Entry{Outcome: resolve.NotFound})

	if _, found := c.Get(ctx, b); found {
		t.Error("Get() found entry under a different platform's key")
	}
}
