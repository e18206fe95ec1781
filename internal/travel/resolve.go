package travel

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

var aliases = map[string]string{
	"uk":                       "GB",
	"england":                  "GB",
	"great britain":            "GB",
	"usa":                      "US",
	"america":                  "US",
	"united states of america": "US",
	"holland":                  "NL",
	"czechia":                  "CZ",
	"korea":                    "KR",
	"emirates":                 "AE",
	"united arab emirates":     "AE",
	"turkiye":                  "TR",
}

// Resolve maps free text (an ISO code, a country name or a near-miss spelling) to a catalog country.
func Resolve(query string) (Country, bool) {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if q == "" {
		return Country{}, false
	}
	if len(q) == 2 {
		if c, ok := ByCode(q); ok {
			return c, true
		}
	}
	if code, ok := aliases[q]; ok {
		return ByCode(code)
	}

	var (
		best     Country
		bestDist = -1
	)
	for _, c := range countries {
		name := strings.ToLower(c.Name)
		if name == q {
			return c, true
		}
		if len(q) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(q, name)
		if dist > levenshteinLimit(len(name)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, bestDist >= 0
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
