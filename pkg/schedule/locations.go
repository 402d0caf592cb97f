package schedule

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Catalog is the closed set of locations the portal offers, mapping
// location names to the portal's facility IDs.
var Catalog = map[string]string{
	"Calgary":     "89",
	"Halifax":     "90",
	"Montreal":    "91",
	"Ottawa":      "92",
	"Quebec City": "93",
	"Toronto":     "94",
	"Vancouver":   "95",
}

// AllowedLocations is the closed set of locations the engine may consider.
// Entries are literal names or glob patterns ("Van*"). An empty set allows
// every location the portal offers.
type AllowedLocations struct {
	patterns []glob.Glob
	raw      []string
}

// NewAllowedLocations compiles the configured patterns. Unknown literal
// names are rejected so a typo cannot silently disable probing.
func NewAllowedLocations(patterns []string) (AllowedLocations, error) {
	a := AllowedLocations{raw: patterns}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return AllowedLocations{}, fmt.Errorf("invalid location pattern %q: %w", p, err)
		}
		if isLiteral(p) {
			if _, ok := Catalog[p]; !ok {
				return AllowedLocations{}, fmt.Errorf("unknown location %q", p)
			}
		}
		a.patterns = append(a.patterns, g)
	}
	return a, nil
}

// isLiteral reports whether a pattern contains no glob metacharacters.
func isLiteral(pattern string) bool {
	for _, ch := range pattern {
		switch ch {
		case '*', '?', '[', '{', '\\':
			return false
		}
	}
	return true
}

// Empty reports whether no restriction is configured.
func (a AllowedLocations) Empty() bool {
	return len(a.patterns) == 0
}

// Len returns the number of configured patterns.
func (a AllowedLocations) Len() int {
	return len(a.patterns)
}

// Allows reports whether the named location may be probed. An empty set
// allows everything.
func (a AllowedLocations) Allows(name string) bool {
	if a.Empty() {
		return true
	}
	for _, g := range a.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
