package htmlutil

import "testing"

func TestFollowers(t *testing.T) {
	tests := []struct {
		name string
		html string
		want int
		ok   bool
	}{
		{
			"visible text with suffix",
			`<div><span>1.2M Followers</span></div>`,
			1_200_000, true,
		},
		{
			"visible subscribers",
			`<yt-formatted-string>4.56M subscribers</yt-formatted-string>`,
			4_560_000, true,
		},
		{
			"embedded followers string",
			`<script>{"followers": "650,000,000"}</script>`,
			650_000_000, true,
		},
		{
			"follower_count numeric",
			`{"follower_count": 123456}`,
			123_456, true,
		},
		{
			"followers_count numeric",
			`{"followers_count": 7890}`,
			7_890, true,
		},
		{
			"subscriberCount quoted with suffix",
			`{"subscriberCount": "12k"}`,
			12_000, true,
		},
		{
			"aria label",
			`<a aria-label="3,400 followers" href="/x"></a>`,
			3_400, true,
		},
		{
			"data attribute",
			`<div data-followers="5.1m"></div>`,
			5_100_000, true,
		},
		{
			"zero visible count falls through to structured data",
			`<span>0 followers</span><script>{"follower_count": 42}</script>`,
			42, true,
		},
		{
			"no match",
			`<html><body>nothing to see</body></html>`,
			0, false,
		},
		{
			"all candidates zero",
			`<span>0 followers</span>{"followers_count": 0}`,
			0, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Followers(tt.html)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Followers() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

// Visible text is the highest-precision recognizer and must win over looser
// patterns that also match.
func TestFollowersOrdering(t *testing.T) {
	html := `<span>1.5M followers</span><div data-followers="99"></div>`
	got, ok := Followers(html)
	if !ok || got != 1_500_000 {
		t.Errorf("Followers() = (%d, %v), want (1500000, true)", got, ok)
	}
}
