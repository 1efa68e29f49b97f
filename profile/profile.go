// Package profile defines the common types for social media profile resolution.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Platform identifies a supported social network. The set is closed: adding a
// platform means adding a provider and scrape adapter for it.
type Platform string

// Supported platforms.
const (
	Instagram Platform = "INSTAGRAM"
	TwitterX  Platform = "TWITTER_X"
	YouTube   Platform = "YOUTUBE"
	TikTok    Platform = "TIKTOK"
	LinkedIn  Platform = "LINKEDIN"
)

// All lists every supported platform.
var All = []Platform{Instagram, TwitterX, YouTube, TikTok, LinkedIn}

// ParsePlatform maps a platform name (any case, aliases accepted) to a
// Platform. The second return is false for unknown names.
func ParsePlatform(name string) (Platform, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INSTAGRAM", "IG":
		return Instagram, true
	case "TWITTER_X", "TWITTER", "X":
		return TwitterX, true
	case "YOUTUBE", "YT":
		return YouTube, true
	case "TIKTOK":
		return TikTok, true
	case "LINKEDIN":
		return LinkedIn, true
	default:
		return "", false
	}
}

// Common errors returned by platform adapters.
var (
	// ErrNoCredential means the platform has no provider credential configured.
	ErrNoCredential = errors.New("no credential configured")
	// ErrProfileNotFound means the provider authoritatively reported the
	// profile as missing.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrBadStatus means the provider endpoint answered with a non-2xx status.
	ErrBadStatus = errors.New("unexpected HTTP status")
	// ErrMalformedPayload means the provider answered 200 but the payload was
	// missing the expected profile object.
	ErrMalformedPayload = errors.New("malformed provider payload")
)

// Profile is the engine's resolved output. Every field is always populated:
// numeric fields default to 0 and string fields to "" when a source does not
// supply them, so consumers treat zero/empty as "unknown" rather than
// null-checking.
type Profile struct {
	Name           string   `json:"name"`
	Username       string   `json:"username"`
	Platform       Platform `json:"platform"`
	Followers      int      `json:"followers"`
	Following      int      `json:"following"`
	Posts          int      `json:"postsCount"`
	Bio            string   `json:"bio"`
	ProfileURL     string   `json:"profileUrl"`
	IsPrivate      bool     `json:"isPrivate"`
	IsVerified     bool     `json:"isVerified"`
	ProfilePicture string   `json:"profilePicture"`
}

// CanonicalURL returns the canonical profile URL for a platform/username pair.
func CanonicalURL(p Platform, username string) string {
	switch p {
	case Instagram:
		return fmt.Sprintf("https://instagram.com/%s", username)
	case TwitterX:
		return fmt.Sprintf("https://twitter.com/%s", username)
	case YouTube:
		return fmt.Sprintf("https://www.youtube.com/@%s", username)
	case TikTok:
		return fmt.Sprintf("https://www.tiktok.com/@%s", username)
	case LinkedIn:
		return fmt.Sprintf("https://www.linkedin.com/in/%s/", username)
	default:
		return ""
	}
}
