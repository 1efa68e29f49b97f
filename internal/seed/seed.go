// Package seed loads demo data so a fresh install has something to show.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rehan959/info-tracker-sub000/internal/auth"
	"github.com/Rehan959/info-tracker-sub000/internal/store"
	"github.com/Rehan959/info-tracker-sub000/profile"
)

// DemoEmail and DemoPassword are the credentials of the seeded account.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo-password"
)

var demoInfluencers = []store.Influencer{
	{
		Name: "NASA", Username: "nasa", Platform: profile.Instagram,
		Followers: 96800000, Posts: 4100, Bio: "Exploring the universe and our home planet.",
		ProfileURL: "https://instagram.com/nasa", IsVerified: true, Category: "science",
	},
	{
		Name: "MrBeast", Username: "mrbeast", Platform: profile.YouTube,
		Followers: 300000000, Posts: 800, Bio: "I want to make the world a better place before I die.",
		ProfileURL: "https://www.youtube.com/@mrbeast", IsVerified: true, Category: "entertainment",
	},
	{
		Name: "Khabane Lame", Username: "khaby.lame", Platform: profile.TikTok,
		Followers: 162100000, Posts: 1200, Bio: "Se vuoi ridere sei nel posto giusto.",
		ProfileURL: "https://www.tiktok.com/@khaby.lame", IsVerified: true, Category: "comedy",
	},
	{
		Name: "NASA", Username: "nasa", Platform: profile.TwitterX,
		Followers: 80500000, Posts: 72000, Bio: "There's space for everybody.",
		ProfileURL: "https://twitter.com/nasa", IsVerified: true, Category: "science",
	},
	{
		Name: "Satya Nadella", Username: "satyanadella", Platform: profile.LinkedIn,
		Followers: 10500000, Bio: "Chairman and CEO at Microsoft",
		ProfileURL: "https://www.linkedin.com/in/satyanadella/", Category: "tech",
	},
}

// Run inserts the demo user and influencers. It is a no-op when the
// demo user already exists, so it is safe to call on every startup.
func Run(ctx context.Context, users *auth.Repo, repo *store.Repo) error {
	if u, err := users.GetByEmail(ctx, DemoEmail); err != nil {
		return fmt.Errorf("check demo user: %w", err)
	} else if u != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	if err := users.CreateUser(ctx, auth.User{
		ID:           uuid.NewString(),
		Email:        DemoEmail,
		Name:         "Demo User",
		PasswordHash: string(hash),
	}); err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}

	for i := range demoInfluencers {
		inf := demoInfluencers[i]
		created, err := repo.Create(ctx, &inf)
		if err != nil {
			return fmt.Errorf("seed influencer %s/%s: %w", inf.Platform, inf.Username, err)
		}
		if err := repo.AddActivity(ctx, created.ID, "added", "seeded demo profile"); err != nil {
			return fmt.Errorf("seed activity: %w", err)
		}
	}
	return nil
}
