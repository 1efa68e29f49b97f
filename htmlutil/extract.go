// Package htmlutil recovers follower figures from raw profile HTML.
//
// Platforms render follower counts in wildly different places: visible text,
// embedded JSON blobs, aria labels, data attributes. Rather than parse the
// DOM, Followers runs an ordered list of recognizers over the raw markup and
// returns the first value that normalizes to a positive count.
package htmlutil

import (
	"regexp"

	"github.com/Rehan959/info-tracker-sub000/followers"
)

// recognizer extracts one candidate follower string from HTML.
type recognizer struct {
	name string
	re   *regexp.Regexp
}

// Ordered from highest precision to loosest heuristic. Earlier patterns are
// explicit, labeled forms; later ones are fallbacks for markup that omits
// them. Evaluation stops at the first recognizer whose capture normalizes to
// a strictly positive integer, so a syntactic match that parses to 0 falls
// through to the next pattern.
var recognizers = []recognizer{
	{"visible text", regexp.MustCompile(`(?i)([0-9][0-9,.]*\s*[kmbt]?)\s*(?:followers|subscribers)`)},
	{"followers field", regexp.MustCompile(`(?i)"followers"\s*:\s*"?([0-9][0-9,.]*)"?`)},
	{"follower_count field", regexp.MustCompile(`(?i)"followers?_count"\s*:\s*([0-9]+)`)},
	{"subscriberCount field", regexp.MustCompile(`(?i)"subscriberCount"\s*:\s*"?([0-9][0-9,.]*\s*[kmbt]?)"?`)},
	{"aria-label", regexp.MustCompile(`(?i)aria-label="([0-9][0-9,.]*\s*[kmbt]?)\s*followers"`)},
	{"data attribute", regexp.MustCompile(`(?i)data-followers="([0-9,.kmbt]+)"`)},
}

// Followers extracts a follower count from raw HTML. The second return is
// false when no recognizer yields a positive count.
func Followers(html string) (int, bool) {
	for _, r := range recognizers {
		m := r.re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		if n := followers.NormalizeString(m[1]); n > 0 {
			return n, true
		}
	}
	return 0, false
}
