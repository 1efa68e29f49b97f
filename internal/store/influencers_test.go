package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Rehan959/info-tracker-sub000/profile"
)

func testRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db)
}

func TestCreateGet(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, &Influencer{
		Name:     "NASA",
		Username: "nasa",
		Platform: profile.Instagram,
		Category: "science",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}

	got, err := r.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "nasa" || got.Platform != profile.Instagram {
		t.Errorf("GetByID() = %+v", got)
	}

	byRef, err := r.GetByRef(ctx, profile.Instagram, "nasa")
	if err != nil {
		t.Fatalf("GetByRef() error = %v", err)
	}
	if byRef.ID != created.ID {
		t.Errorf("GetByRef() ID = %q, want %q", byRef.ID, created.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	r := testRepo(t)
	if _, err := r.GetByID(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDuplicateRefRejected(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	if _, err := r.Create(ctx, &Influencer{Username: "nasa", Platform: profile.Instagram}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := r.Create(ctx, &Influencer{Username: "nasa", Platform: profile.Instagram}); err == nil {
		t.Error("Create() error = nil for duplicate platform/username")
	}
}

func TestListFilters(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	seed := []*Influencer{
		{Name: "NASA", Username: "nasa", Platform: profile.Instagram},
		{Name: "NASA", Username: "nasa", Platform: profile.TwitterX},
		{Name: "MrBeast", Username: "mrbeast", Platform: profile.YouTube},
	}
	for _, inf := range seed {
		if _, err := r.Create(ctx, inf); err != nil {
			t.Fatalf("Create(%s/%s) error = %v", inf.Platform, inf.Username, err)
		}
	}

	all, err := r.List(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() returned %d, want 3", len(all))
	}

	ig, err := r.List(ctx, ListQuery{Platform: profile.Instagram})
	if err != nil {
		t.Fatalf("List(platform) error = %v", err)
	}
	if len(ig) != 1 || ig[0].Username != "nasa" {
		t.Errorf("List(platform) = %+v", ig)
	}

	named, err := r.List(ctx, ListQuery{Q: "beast"})
	if err != nil {
		t.Fatalf("List(q) error = %v", err)
	}
	if len(named) != 1 || named[0].Username != "mrbeast" {
		t.Errorf("List(q) = %+v", named)
	}

	paged, err := r.List(ctx, ListQuery{Limit: 2})
	if err != nil {
		t.Fatalf("List(limit) error = %v", err)
	}
	if len(paged) != 2 {
		t.Errorf("List(limit) returned %d, want 2", len(paged))
	}
}

func TestApplyProfile(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, &Influencer{Username: "nasa", Platform: profile.Instagram})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := r.ApplyProfile(ctx, created.ID, &profile.Profile{
		Name:       "NASA",
		Username:   "nasa",
		Platform:   profile.Instagram,
		Followers:  96000000,
		Posts:      4000,
		Bio:        "Exploring the universe",
		IsVerified: true,
	})
	if err != nil {
		t.Fatalf("ApplyProfile() error = %v", err)
	}
	if updated.Followers != 96000000 || !updated.IsVerified {
		t.Errorf("ApplyProfile() = %+v", updated)
	}
	if updated.LastRefreshedAt == nil {
		t.Error("ApplyProfile() did not stamp LastRefreshedAt")
	}
}

func TestDeleteCascadesActivities(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, &Influencer{Username: "nasa", Platform: profile.Instagram})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := r.AddActivity(ctx, created.ID, "refresh", "followers 0 -> 96000000"); err != nil {
		t.Fatalf("AddActivity() error = %v", err)
	}

	if err := r.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	acts, err := r.RecentActivities(ctx, 10)
	if err != nil {
		t.Fatalf("RecentActivities() error = %v", err)
	}
	if len(acts) != 0 {
		t.Errorf("activities survived cascade delete: %+v", acts)
	}
}

func TestStats(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	seed := []*Influencer{
		{Username: "nasa", Platform: profile.Instagram, Followers: 1000, IsVerified: true},
		{Username: "natgeo", Platform: profile.Instagram, Followers: 2000},
		{Username: "mrbeast", Platform: profile.YouTube, Followers: 3000, IsVerified: true},
	}
	for _, inf := range seed {
		if _, err := r.Create(ctx, inf); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	s, err := r.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.Total != 3 || s.TotalFollowers != 6000 || s.Verified != 2 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.ByPlatform[profile.Instagram] != 2 || s.ByPlatform[profile.YouTube] != 1 {
		t.Errorf("Stats().ByPlatform = %+v", s.ByPlatform)
	}
}
