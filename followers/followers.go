// Package followers parses heterogeneous follower-count text into canonical
// non-negative integers. Sources report counts as raw numbers ("650000000"),
// comma-grouped strings ("650,000,000"), or unit-suffixed shorthand ("1.2M",
// "12k"), and some sources report garbage; Normalize accepts all of them and
// never fails.
package followers

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberToken matches the first decimal number with an optional one-letter
// unit suffix. Thousands separators are stripped before matching.
var numberToken = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*([kmbt])?`)

var multipliers = map[string]float64{
	"k": 1e3,
	"m": 1e6,
	"b": 1e9,
	"t": 1e12,
}

// Normalize converts any raw follower value into a non-negative integer.
// Unparseable input normalizes to 0 rather than propagating an error: a
// missing count and a zero count are indistinguishable downstream anyway.
func Normalize(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return clamp(float64(v))
	case int64:
		return clamp(float64(v))
	case float64:
		return clamp(v)
	case float32:
		return clamp(float64(v))
	case string:
		return NormalizeString(v)
	default:
		return 0
	}
}

// NormalizeString parses a follower-count string. It lower-cases, strips
// thousands-separator commas, then reads the first <number><suffix?> token
// with k/m/b/t multipliers. No numeric token means 0.
func NormalizeString(s string) int {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), ",", "")
	if s == "" {
		return 0
	}

	m := numberToken.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	mult := 1.0
	if m[2] != "" {
		mult = multipliers[m[2]]
	}

	return clamp(value * mult)
}

func clamp(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int(math.Floor(v))
}
