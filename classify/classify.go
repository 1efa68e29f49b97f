// Package classify maps profile URLs and platform:username tokens to a
// platform and canonical username.
package classify

import (
	"regexp"
	"strings"

	"github.com/Rehan959/info-tracker-sub000/profile"
)

// Ref identifies a profile on one platform. Username is always non-empty,
// lower-cased, and stripped of the leading @; Classify never constructs a Ref
// with an empty username.
type Ref struct {
	Platform profile.Platform `json:"platform"`
	Username string           `json:"username"`
}

// One pattern per platform, tried in order; the first match wins and no
// further patterns are attempted.
var urlPatterns = []struct {
	platform profile.Platform
	re       *regexp.Regexp
}{
	{profile.Instagram, regexp.MustCompile(`(?i)instagram\.com/([^/?#]+)`)},
	{profile.TwitterX, regexp.MustCompile(`(?i)(?:twitter\.com|x\.com)/([^/?#]+)`)},
	{profile.YouTube, regexp.MustCompile(`(?i)youtube\.com/(?:channel/|c/|user/|@)?([^/?#]+)`)},
	{profile.TikTok, regexp.MustCompile(`(?i)tiktok\.com/@([^/?#]+)`)},
	{profile.LinkedIn, regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#]+)`)},
}

// Instagram content URLs structurally resemble profile URLs but carry no
// resolvable username; they are rejected before pattern matching.
var instagramContentPaths = []string{"/p/", "/reel/", "/reels/", "/tv/", "/stories/", "/explore/"}

// Classify determines the platform and canonical username for the input,
// which is either a profile URL or a compact platform:username token.
// The second return is false when no supported platform matches.
func Classify(input string) (Ref, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Ref{}, false
	}

	if !strings.Contains(strings.ToLower(input), "://") && strings.Contains(input, ":") {
		return classifyToken(input)
	}
	return classifyURL(input)
}

// classifyToken handles the platform:username shorthand, e.g. "youtube:@MrBeast".
func classifyToken(token string) (Ref, bool) {
	name, username, _ := strings.Cut(token, ":")
	p, ok := profile.ParsePlatform(name)
	if !ok {
		return Ref{}, false
	}
	username = canonicalize(username)
	if username == "" {
		return Ref{}, false
	}
	return Ref{Platform: p, Username: username}, true
}

func classifyURL(urlStr string) (Ref, bool) {
	lower := strings.ToLower(urlStr)

	if strings.Contains(lower, "instagram.com") {
		for _, path := range instagramContentPaths {
			if strings.Contains(lower, "instagram.com"+path) {
				return Ref{}, false
			}
		}
	}

	for _, pat := range urlPatterns {
		m := pat.re.FindStringSubmatch(urlStr)
		if m == nil {
			continue
		}
		username := canonicalize(m[1])
		if username == "" {
			return Ref{}, false
		}
		return Ref{Platform: pat.platform, Username: username}, true
	}
	return Ref{}, false
}

// canonicalize lower-cases a captured username and strips the leading @,
// trailing slash, query string, and fragment.
func canonicalize(username string) string {
	username = strings.TrimSpace(username)
	if i := strings.IndexAny(username, "?#"); i >= 0 {
		username = username[:i]
	}
	username = strings.TrimSuffix(username, "/")
	username = strings.TrimPrefix(username, "@")
	return strings.ToLower(username)
}
